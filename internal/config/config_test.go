package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given no configuration sources", t, func() {
		clearEnv(t)

		Convey("When the config is loaded", func() {
			cfg, err := Load(ctx)

			Convey("Then defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.Storage, ShouldEqual, StorageMemory)
				So(cfg.ShardCount, ShouldEqual, 16)
				So(cfg.MaxPageSize, ShouldEqual, 100)
				So(cfg.DefaultPageSize, ShouldEqual, 10)
			})
		})
	})

	Convey("Given environment overrides", t, func() {
		clearEnv(t)
		t.Setenv("WATCHRANK_ADDR", ":7070")
		t.Setenv("WATCHRANK_LOG_LEVEL", "debug")
		t.Setenv("WATCHRANK_SHARD_COUNT", "32")

		Convey("When the config is loaded", func() {
			cfg, err := Load(ctx)

			Convey("Then env values win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.ShardCount, ShouldEqual, 32)
				So(cfg.Storage, ShouldEqual, StorageMemory)
			})
		})
	})

	Convey("Given a config file", t, func() {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := "addr: \":6060\"\nlog_level: warn\nmax_page_size: 50\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("WATCHRANK_CONFIG", path)

		Convey("When the config is loaded", func() {
			cfg, err := Load(ctx)

			Convey("Then file values win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.LogLevel, ShouldEqual, "warn")
				So(cfg.MaxPageSize, ShouldEqual, 50)
			})
		})

		Convey("And env overrides the file", func() {
			t.Setenv("WATCHRANK_ADDR", ":5050")
			cfg, err := Load(ctx)

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
			So(cfg.LogLevel, ShouldEqual, "warn")
		})
	})

	Convey("Given a missing config file", t, func() {
		clearEnv(t)
		t.Setenv("WATCHRANK_CONFIG", "/does/not/exist.yaml")

		Convey("When the config is loaded", func() {
			_, err := Load(ctx)
			So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
		})
	})

	Convey("Given invalid values", t, func() {
		Convey("When storage is unknown", func() {
			clearEnv(t)
			t.Setenv("WATCHRANK_STORAGE", "cassandra")

			_, err := Load(ctx)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When postgres storage has no DSN", func() {
			clearEnv(t)
			t.Setenv("WATCHRANK_STORAGE", StoragePostgres)

			_, err := Load(ctx)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When postgres storage has a DSN", func() {
			clearEnv(t)
			t.Setenv("WATCHRANK_STORAGE", StoragePostgres)
			t.Setenv("WATCHRANK_POSTGRES_DSN", "postgres://localhost:5432/watchrank")

			cfg, err := Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Storage, ShouldEqual, StoragePostgres)
		})

		Convey("When shard_count is below one", func() {
			clearEnv(t)
			t.Setenv("WATCHRANK_SHARD_COUNT", "0")

			_, err := Load(ctx)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When default_page_size exceeds max_page_size", func() {
			clearEnv(t)
			t.Setenv("WATCHRANK_DEFAULT_PAGE_SIZE", "200")

			_, err := Load(ctx)
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

// clearEnv removes every WATCHRANK_ variable so tests see a clean slate.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WATCHRANK_CONFIG",
		"WATCHRANK_ADDR",
		"WATCHRANK_LOG_LEVEL",
		"WATCHRANK_LOG_FILE",
		"WATCHRANK_STORAGE",
		"WATCHRANK_POSTGRES_DSN",
		"WATCHRANK_SHARD_COUNT",
		"WATCHRANK_CATALOG_PATH",
		"WATCHRANK_MAX_PAGE_SIZE",
		"WATCHRANK_DEFAULT_PAGE_SIZE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
