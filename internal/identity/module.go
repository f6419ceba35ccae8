package identity

import "go.uber.org/fx"

// LocalModule provides the sqlite-backed Provider; it needs a *sql.DB.
var LocalModule = fx.Options(
	fx.Provide(
		newLocalProvider,
		func(l *Local) Provider { return l },
	),
)

// GoTrueModule provides the hosted Provider; it needs a *supabase.Client.
var GoTrueModule = fx.Options(
	fx.Provide(
		NewGoTrue,
		func(g *GoTrue) Provider { return g },
		func(g *GoTrue) Refresher { return g },
	),
)
