package api

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// indexFile is served for "/".
const indexFile = "index.html"

// StaticFileServer serves the companion front end from a directory on disk.
// Files are opened through os.Root so requests cannot escape the directory.
type StaticFileServer struct {
	dir    string
	logger logger.Logger
}

// NewStaticFileServer creates a static file server rooted at dir.
func NewStaticFileServer(dir string, log logger.Logger) *StaticFileServer {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	return &StaticFileServer{dir: dir, logger: log}
}

// Available reports whether the static directory exists.
func (sfs *StaticFileServer) Available() bool {
	if sfs.dir == "" {
		return false
	}
	info, err := os.Stat(sfs.dir)
	return err == nil && info.IsDir()
}

// RegisterRoutes registers "/" and the catch-all file route. Nothing is
// registered when the directory is missing.
func (sfs *StaticFileServer) RegisterRoutes(e *echo.Echo) bool {
	if !sfs.Available() {
		sfs.logger.Warn("Static directory not found, front end will not be served",
			logger.String("dir", sfs.dir))
		return false
	}

	e.GET("/", sfs.serveIndex)
	e.HEAD("/", sfs.serveIndex)
	e.GET("/*", sfs.serveAsset)
	e.HEAD("/*", sfs.serveAsset)

	sfs.logger.Info("Serving static front end", logger.String("dir", sfs.dir))
	return true
}

func (sfs *StaticFileServer) serveIndex(c echo.Context) error {
	return sfs.serveFile(c, indexFile)
}

func (sfs *StaticFileServer) serveAsset(c echo.Context) error {
	name := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	if name == "" {
		name = indexFile
	}
	return sfs.serveFile(c, name)
}

// serveFile serves name relative to the static root. Directories resolve
// to their index.html.
func (sfs *StaticFileServer) serveFile(c echo.Context, name string) error {
	root, err := os.OpenRoot(sfs.dir)
	if err != nil {
		sfs.logger.Error("Failed to open static directory",
			logger.String("dir", sfs.dir), logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to open static directory")
	}
	defer sfs.closeWithLog(root, "static root")

	file, err := openFromRoot(root, name)
	if err != nil {
		return err
	}
	defer sfs.closeWithLog(file, name)

	stat, err := file.Stat()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get file info")
	}
	if stat.IsDir() {
		return sfs.serveFile(c, path.Join(name, indexFile))
	}

	c.Response().Header().Set(echo.HeaderContentType, getMIMEType(name))
	if filepath.Ext(name) == ".html" {
		c.Response().Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(c.Response(), c.Request(), filepath.Base(name), stat.ModTime(), file)
	return nil
}

func openFromRoot(root *os.Root, name string) (*os.File, error) {
	file, err := root.Open(name)
	switch {
	case err == nil:
		return file, nil
	case os.IsNotExist(err):
		return nil, echo.NewHTTPError(http.StatusNotFound, "File not found")
	default:
		// Includes paths that try to leave the root.
		return nil, echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}
}

func (sfs *StaticFileServer) closeWithLog(c io.Closer, name string) {
	if err := c.Close(); err != nil {
		sfs.logger.Warn("Error closing "+name, logger.Error(err))
	}
}

// getMIMEType returns the MIME type for a file based on its extension.
func getMIMEType(name string) string {
	switch filepath.Ext(name) {
	case ".js", ".mjs":
		return "application/javascript; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".json", ".map":
		return "application/json; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".woff2":
		return "font/woff2"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
