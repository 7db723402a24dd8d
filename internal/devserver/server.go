package devserver

import (
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fmchong/intramail/internal/filex"
)

// Server bundles the echo instance with its state and upload directory.
type Server struct {
	Echo  *echo.Echo
	state *State
	conf  *Config

	uploadDir string
}

// New builds a ready-to-run server: in-memory fixture state, the action
// endpoint on /api.php, and static serving of uploaded files.
func New(conf *Config) (*Server, error) {
	conf.applyDefaults()

	uploadDir := conf.UploadDir
	var err error
	if filepath.IsAbs(uploadDir) {
		err = os.MkdirAll(uploadDir, 0o770)
	} else {
		uploadDir, err = filex.EnsureSubDir(uploadDir)
	}
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	s := &Server{Echo: e, state: NewState(), conf: conf, uploadDir: uploadDir}

	e.GET("/api.php", s.handleAction)
	e.POST("/api.php", s.handleAction)
	e.Static(conf.PublicBaseURL, uploadDir)

	return s, nil
}

// Start blocks serving the configured address.
func (s *Server) Start() error {
	return s.Echo.Start(s.conf.Listen)
}
