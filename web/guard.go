package web

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-sweetshop"
)

type guardAction struct {
	outcome  sweetshop.Outcome
	location string
	status   int
	remember bool
}

func planGuard(state sweetshop.State, class sweetshop.RouteClass, cfg sweetshop.Config, method string) guardAction {
	outcome := sweetshop.Decide(state, class)
	switch outcome {
	case sweetshop.OutcomeLoading:
		return guardAction{outcome: outcome, status: http.StatusServiceUnavailable}
	case sweetshop.OutcomeRedirectLogin:
		return guardAction{
			outcome:  outcome,
			location: cfg.GetLoginRoute(),
			status:   redirectStatus(method),
			remember: strings.EqualFold(method, string(router.GET)),
		}
	case sweetshop.OutcomeRedirectLanding:
		return guardAction{
			outcome:  outcome,
			location: cfg.GetLandingRoute(),
			status:   redirectStatus(method),
		}
	default:
		return guardAction{outcome: sweetshop.OutcomeRender, status: http.StatusOK}
	}
}

// Guard applies the route guard for class to a route. A request without a
// session is treated as still bootstrapping.
func Guard(class sweetshop.RouteClass, cfg sweetshop.Config, views *Views) router.MiddlewareFunc {
	if views == nil {
		views = DefaultViews()
	}
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			state := sweetshop.StateBootstrapping
			if session, ok := SessionFrom(ctx); ok {
				state = session.State()
			}

			action := planGuard(state, class, cfg, ctx.Method())
			switch action.outcome {
			case sweetshop.OutcomeLoading:
				ctx.SetHeader("Retry-After", "1")
				ctx.SetHeader("Refresh", "1")
				return ctx.Status(action.status).Render(views.Loading, MergeTemplateData(ctx, router.ViewContext{
					"title": "Loading",
				}))
			case sweetshop.OutcomeRedirectLogin:
				if action.remember {
					RememberRejected(ctx, cfg)
				}
				return ctx.Redirect(action.location, action.status)
			case sweetshop.OutcomeRedirectLanding:
				return ctx.Redirect(action.location, action.status)
			default:
				return ctx.Next()
			}
		}
	}
}
