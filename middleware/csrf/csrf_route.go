package csrf

import "github.com/goliatone/go-router"

// RouteConfig controls the token bootstrap endpoint used by scripts that
// post forms without a rendered token.
type RouteConfig struct {
	Path       string
	ContextKey string
	RouteName  string
}

const (
	defaultRoutePath = "/csrf"
	defaultRouteName = "csrf.get"
)

// RegisterRoutes registers a GET endpoint returning the request token and
// the field and header names it is accepted under. The CSRF middleware must
// run before it.
func RegisterRoutes[T any](app router.Router[T], cfg ...RouteConfig) {
	conf := routeConfigDefault(cfg...)
	app.Get(conf.Path, tokenHandler(conf)).SetName(conf.RouteName)
}

func routeConfigDefault(cfg ...RouteConfig) RouteConfig {
	conf := RouteConfig{
		Path:       defaultRoutePath,
		ContextKey: DefaultContextKey,
		RouteName:  defaultRouteName,
	}
	if len(cfg) == 0 {
		return conf
	}

	if c := cfg[0]; c.Path != "" {
		conf.Path = c.Path
	}
	if c := cfg[0]; c.ContextKey != "" {
		conf.ContextKey = c.ContextKey
	}
	if c := cfg[0]; c.RouteName != "" {
		conf.RouteName = c.RouteName
	}
	return conf
}

func tokenHandler(cfg RouteConfig) router.HandlerFunc {
	return func(ctx router.Context) error {
		helpers := CSRFTemplateHelpersWithRouter(ctx, cfg.ContextKey)
		token, _ := helpers["csrf_token"].(string)
		if token == "" {
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": ErrTokenMissing.Message,
			})
		}

		ctx.SetHeader("Cache-Control", "no-store, max-age=0")

		fieldName, _ := ctx.Locals(cfg.ContextKey + "_field").(string)
		if fieldName == "" {
			fieldName = DefaultFormFieldName
		}

		return ctx.JSON(router.StatusOK, map[string]string{
			"token":       token,
			"field_name":  fieldName,
			"header_name": helpers["csrf_header_name"].(string),
		})
	}
}
