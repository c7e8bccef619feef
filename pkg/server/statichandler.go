package server

import (
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/labstack/echo/v4"
	"go.withmatt.com/httpheaders"
)

// staticFile opens the file named by the route wildcard and sets the entity headers.
func staticFile(c echo.Context, root fs.FS) (fs.File, string, error) {
	name := c.Param("*")
	if !fs.ValidPath(name) {
		return nil, "", c.HTML(http.StatusNotFound, "Not Found")
	}
	fdata, err := root.Open(name)
	if err != nil {
		return nil, "", c.HTML(http.StatusNotFound, "Not Found")
	}

	st, err := fdata.Stat()
	if err != nil || st.IsDir() {
		_ = fdata.Close()
		return nil, "", c.HTML(http.StatusNotFound, "Not Found")
	}

	mimeType := mime.TypeByExtension(path.Ext(name))
	if mimeType == "" {
		mimeType = echo.MIMEOctetStream
	}
	c.Response().Header().Set(httpheaders.ContentLength, fmt.Sprintf("%v", st.Size()))
	c.Response().Header().Set(httpheaders.LastModified, st.ModTime().UTC().Format(time.RFC1123))
	return fdata, mimeType, nil
}

// StaticGet serves files from root by the route wildcard.
func StaticGet(root fs.FS) echo.HandlerFunc {
	return func(c echo.Context) error {
		fdata, mimeType, err := staticFile(c, root)
		if fdata == nil {
			return err
		}
		defer fdata.Close()
		return c.Stream(http.StatusOK, mimeType, fdata)
	}
}

// StaticHead answers HEAD requests for files in root.
func StaticHead(root fs.FS) echo.HandlerFunc {
	return func(c echo.Context) error {
		fdata, mimeType, err := staticFile(c, root)
		if fdata == nil {
			return err
		}
		_ = fdata.Close()
		c.Response().Header().Set(echo.HeaderContentType, mimeType)
		return c.NoContent(http.StatusOK)
	}
}
