package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oliverisaac/goli"
	"github.com/oliverisaac/stickies/static"
	"github.com/oliverisaac/stickies/storage"
	"github.com/oliverisaac/stickies/store"
	"github.com/oliverisaac/stickies/types"
	"github.com/oliverisaac/stickies/views"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	goli.InitLogrus(logrus.DebugLevel)
}

const sessionName = "session"

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("error loading godotenv")
	}

	cfg, err := types.ConfigFromEnv()
	if err != nil {
		logrus.Fatal(errors.Wrap(err, "Loading config"))
	}
	logrus.SetLevel(cfg.LogLevel)

	slot, err := openSlot(cfg)
	if err != nil {
		logrus.Fatal(errors.Wrap(err, "Opening storage"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notes := store.New(slot)
	notes.Load(ctx)

	if cfg.Storage == types.StorageFile && cfg.Watch {
		go func() {
			err := storage.WatchFile(ctx, cfg.DataPath, func() {
				logrus.Debugf("%s changed on disk", cfg.DataPath)
				if err := notes.Reload(ctx); err != nil {
					logrus.Warn(err)
				}
			})
			if err != nil {
				logrus.Error(errors.Wrap(err, "Watching notes file"))
			}
		}()
	}

	e := newServer(cfg, notes)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logrus.Error(errors.Wrap(err, "Shutting down server"))
		}
	}()

	if err := e.Start(cfg.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(errors.Wrap(err, "Serving"))
	}
}

func openSlot(cfg types.Config) (storage.Slot, error) {
	switch cfg.Storage {
	case types.StorageSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", cfg.DBPath)
		}
		slot, err := storage.NewSQLite(db, cfg.SlotKey)
		if err != nil {
			return nil, err
		}
		return slot, nil
	case types.StorageMemory:
		return storage.NewMemory(), nil
	default:
		return storage.NewFile(afero.NewOsFs(), cfg.DataPath), nil
	}
}

func newServer(cfg types.Config, notes *store.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	renderer := views.NewRenderer()
	e.Renderer = renderer
	e.HTTPErrorHandler = httpErrorHandler(e)

	e.StaticFS("/static", static.FS)

	e.Use(recoverMiddleware())

	e.Use(middleware.Secure())

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
	}))

	e.Use(session.Middleware(sessions.NewCookieStore(cfg.CookieSecret)))

	loc := cfg.Location

	// Pages
	e.GET("/", boardPageHandler(notes, loc))

	// Blocks
	e.GET("/notes", searchNotes(notes, renderer, loc))
	e.POST("/notes", createNote(notes, renderer, loc))
	e.POST("/notes/:id/content", updateNoteContent(notes))
	e.POST("/notes/:id/color", updateNoteColor(notes))
	e.GET("/notes/:id/delete", requestNoteDelete(notes, loc))
	e.POST("/notes/:id/delete", resolveNoteDelete(notes))

	return e
}

// recoverMiddleware turns a handler panic into a 500. The panic value is
// wrapped inside the deferred call, while the panicking frames are still on
// the stack, so the logged trace points at the panic site.
func recoverMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					wrapped := goerrors.Wrap(r, 2)
					logrus.Error(wrapped.ErrorStack())
					err = echo.NewHTTPError(http.StatusInternalServerError).SetInternal(wrapped)
				}
			}()
			return next(c)
		}
	}
}

func httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			logrus.Errorf("%+v", err)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}
