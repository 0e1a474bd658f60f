package sweetshop

// RouteClass groups routes by who may see them.
type RouteClass string

const (
	// RoutePublic is visible to everybody once the session is known.
	RoutePublic RouteClass = "public"
	// RouteAnonymousOnly covers home, login and register.
	RouteAnonymousOnly RouteClass = "anonymous_only"
	// RouteProtected requires an authenticated session.
	RouteProtected RouteClass = "protected"
)

// Outcome is what the view layer does for a request.
type Outcome string

const (
	OutcomeLoading         Outcome = "render_loading"
	OutcomeRedirectLogin   Outcome = "redirect_login"
	OutcomeRedirectLanding Outcome = "redirect_landing"
	OutcomeRender          Outcome = "render_content"
)

// Decide returns the single outcome for a session state and route class.
// Unknown states are treated as still bootstrapping and unknown classes as
// protected, so every input has an outcome.
func Decide(state State, class RouteClass) Outcome {
	switch class {
	case RoutePublic, RouteAnonymousOnly, RouteProtected:
	default:
		class = RouteProtected
	}

	switch state {
	case StateAnonymous:
		if class == RouteProtected {
			return OutcomeRedirectLogin
		}
		return OutcomeRender
	case StateAuthenticated:
		if class == RouteAnonymousOnly {
			return OutcomeRedirectLanding
		}
		return OutcomeRender
	default:
		return OutcomeLoading
	}
}

// RouteClasses lists the known route classes.
func RouteClasses() []RouteClass {
	return []RouteClass{RoutePublic, RouteAnonymousOnly, RouteProtected}
}

// States lists the known session states.
func States() []State {
	return []State{StateBootstrapping, StateAnonymous, StateAuthenticated}
}
