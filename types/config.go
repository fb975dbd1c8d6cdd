package types

import (
	errs "errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/oliverisaac/goli"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

type Config struct {
	Listen       string
	Storage      string
	DataPath     string
	DBPath       string
	SlotKey      string
	CookieSecret []byte
	Location     *time.Location
	Watch        bool
	LogLevel     logrus.Level
}

func ConfigFromEnv() (Config, error) {
	ret := Config{}
	var retErr error
	var err error

	ret.Listen = goli.DefaultEnv("STICKIES_LISTEN", ":8080")
	ret.SlotKey = goli.DefaultEnv("STICKIES_SLOT_KEY", "notes-data")

	ret.LogLevel, err = logrus.ParseLevel(goli.DefaultEnv("STICKIES_LOG_LEVEL", "info"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing STICKIES_LOG_LEVEL"))
	}

	ret.Watch, err = strconv.ParseBool(goli.DefaultEnv("STICKIES_WATCH", "true"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "parsing STICKIES_WATCH"))
	}

	ret.Location, err = time.LoadLocation(goli.DefaultEnv("STICKIES_TIMEZONE", "Local"))
	if err != nil {
		retErr = errs.Join(retErr, errors.Wrap(err, "loading STICKIES_TIMEZONE"))
	}

	cookieSecret, ok := os.LookupEnv("STICKIES_COOKIE_STORE_SECRET")
	if !ok || cookieSecret == "" {
		retErr = errs.Join(retErr, fmt.Errorf("You must define env STICKIES_COOKIE_STORE_SECRET"))
	} else {
		ret.CookieSecret = []byte(cookieSecret)
	}

	ret.Storage = goli.DefaultEnv("STICKIES_STORAGE", StorageFile)
	ret.DataPath = goli.DefaultEnv("STICKIES_DATA_PATH", "notes-data.json")
	ret.DBPath = goli.DefaultEnv("STICKIES_DB_PATH", "stickies.db")

	switch ret.Storage {
	case StorageFile:
		if _, err := os.Stat(path.Dir(ret.DataPath)); err != nil {
			retErr = errs.Join(retErr, errors.Wrap(err, "Directory for STICKIES_DATA_PATH must exist"))
		}
	case StorageSQLite:
		if _, err := os.Stat(path.Dir(ret.DBPath)); err != nil {
			retErr = errs.Join(retErr, errors.Wrap(err, "Directory for STICKIES_DB_PATH must exist"))
		}
	case StorageMemory:
	default:
		retErr = errs.Join(retErr, fmt.Errorf("unknown STICKIES_STORAGE %q, want one of %s, %s, %s", ret.Storage, StorageFile, StorageSQLite, StorageMemory))
	}

	logrus.Infof("Using %s storage", ret.Storage)

	return ret, retErr
}
