package module

import (
	"gaexport/internal/platform/config"
	perr "gaexport/internal/platform/errors"
	ptime "gaexport/internal/platform/time"
	"gaexport/internal/platform/validate"
)

// Options holds configuration settings for the export module
type Options struct {
	// TimeZone is local, utc or an IANA name
	TimeZone string `env:"EXPORT_TIMEZONE" validate:"required"`
	// TimestampOffset appends the UTC offset to rendered timestamps
	TimestampOffset bool `env:"EXPORT_TIMESTAMP_OFFSET"`
	// LegacyExitZero makes failed runs exit 0
	LegacyExitZero bool `env:"EXPORT_LEGACY_EXIT_ZERO"`

	MirrorPG bool `env:"EXPORT_MIRROR_PG"`
	MirrorCH bool `env:"EXPORT_MIRROR_CH"`

	PGURL         string `env:"EXPORT_PG_DBURL" validate:"required_if=MirrorPG true,omitempty,url"`
	PGMaxConns    int    `env:"EXPORT_PG_MAX_CONNS" validate:"min=1,max=64"`
	PGSlowMs      int    `env:"EXPORT_PG_SLOW_MS" validate:"min=0"`
	PGLogSQL      bool   `env:"EXPORT_PG_LOG_SQL"`
	PGAsyncCommit bool   `env:"EXPORT_PG_ASYNC_COMMIT"`

	CHURL    string `env:"EXPORT_CH_DBURL" validate:"required_if=MirrorCH true,omitempty,url"`
	CHLogSQL bool   `env:"EXPORT_CH_LOG_SQL"`
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	ef := cfg.Prefix("EXPORT_")
	return Options{
		TimeZone:        ef.MayString("TIMEZONE", "local"),
		TimestampOffset: ef.MayBool("TIMESTAMP_OFFSET", false),
		LegacyExitZero:  ef.MayBool("LEGACY_EXIT_ZERO", false),

		MirrorPG: ef.MayBool("MIRROR_PG", false),
		MirrorCH: ef.MayBool("MIRROR_CH", false),

		PGURL:         ef.MayString("PG_DBURL", ""),
		PGMaxConns:    ef.MayInt("PG_MAX_CONNS", 4),
		PGSlowMs:      ef.MayInt("PG_SLOW_MS", 500),
		PGLogSQL:      ef.MayBool("PG_LOG_SQL", false),
		PGAsyncCommit: ef.MayBool("PG_ASYNC_COMMIT", false),

		CHURL:    ef.MayString("CH_DBURL", ""),
		CHLogSQL: ef.MayBool("CH_LOG_SQL", false),
	}
}

// Clock resolves the timestamp policy
func (o Options) Clock() (ptime.Clock, error) {
	loc, err := ptime.LoadLocation(o.TimeZone)
	if err != nil {
		return ptime.Clock{}, err
	}
	return ptime.Clock{Location: loc, WithOffset: o.TimestampOffset}, nil
}

// Validate checks field rules and that the time zone resolves
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return err
	}
	if _, err := o.Clock(); err != nil {
		return perr.WithField(err, "EXPORT_TIMEZONE")
	}
	return nil
}
