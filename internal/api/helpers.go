package api

import (
	json "github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

func writeJSON(c *echo.Context, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, data)
}

func writeError(c *echo.Context, status int, msg string) error {
	return writeJSON(c, status, ErrorResponse{Error: msg})
}
