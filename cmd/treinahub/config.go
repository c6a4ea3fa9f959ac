package main

import (
	"github.com/treinahub/treinahub/core/cookie"
	"github.com/treinahub/treinahub/core/server"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/integration/database/pg"
	"github.com/treinahub/treinahub/pkg/ratelimiter"
	"github.com/treinahub/treinahub/web"
)

// Config aggregates everything the service reads from the environment.
// Optional integrations (email, WhatsApp, Drive, Redis) are loaded
// separately in main so a missing credential disables the feature
// instead of blocking startup.
type Config struct {
	App     web.Config
	Server  server.Config
	Cookie  cookie.Config
	Session session.Config
	Limiter ratelimiter.Config
	DB      pg.Config
}
