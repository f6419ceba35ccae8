package repository

import "go.uber.org/fx"

var SQLiteModule = fx.Options(
	fx.Provide(
		newSQLiteRepository,
		func(r *SQLite) Repository { return r },
	),
)

var PostgRESTModule = fx.Options(
	fx.Provide(
		NewPostgREST,
		func(r *PostgREST) Repository { return r },
	),
)

var (
	_ Repository = (*SQLite)(nil)
	_ Repository = (*PostgREST)(nil)
)
