package web

import "github.com/goliatone/go-sweetshop"

// Logger is the structured logger used by the web front end.
type Logger = sweetshop.Logger

// Routes holds the paths the controller registers.
type Routes struct {
	Home      string
	Login     string
	Logout    string
	Register  string
	Dashboard string
	Items     string
}

// DefaultRoutes returns the standard route table.
func DefaultRoutes() *Routes {
	return &Routes{
		Home:      "/",
		Login:     "/login",
		Logout:    "/logout",
		Register:  "/register",
		Dashboard: "/dashboard",
		Items:     "/items",
	}
}

// Views holds the template names the controller renders.
type Views struct {
	Home      string
	Login     string
	Register  string
	Dashboard string
	ItemForm  string
	Loading   string
	Error     string
}

// DefaultViews returns the templates shipped in ViewsFS.
func DefaultViews() *Views {
	return &Views{
		Home:      "home",
		Login:     "login",
		Register:  "register",
		Dashboard: "dashboard",
		ItemForm:  "item_form",
		Loading:   "loading",
		Error:     "errors/500",
	}
}
