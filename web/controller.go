package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/goliatone/go-sweetshop"
)

// RegisterRoutes mounts the front end on app. SessionMiddleware must run
// before these routes.
func RegisterRoutes[T any](app router.Router[T], opts ...ControllerOption) *Controller {
	c := NewController(opts...)

	anonymous := Guard(sweetshop.RouteAnonymousOnly, c.Config, c.Views)
	protected := Guard(sweetshop.RouteProtected, c.Config, c.Views)

	app.Get(c.Routes.Home, c.Home, anonymous).SetName("home.get")

	app.Get(c.Routes.Login, c.LoginShow, anonymous).SetName("sign-in.get")
	app.Post(c.Routes.Login, c.LoginPost, anonymous).SetName("sign-in.post")

	app.Get(c.Routes.Register, c.RegistrationShow, anonymous).SetName("register.get")
	app.Post(c.Routes.Register, c.RegistrationCreate, anonymous).SetName("register.post")

	app.Post(c.Routes.Logout, c.LogOut).SetName("sign-out.post")

	app.Get(c.Routes.Dashboard, c.Dashboard, protected).SetName("dashboard.get")

	app.Get(c.Routes.Items+"/new", c.ItemNew, protected).SetName("items.new")
	app.Post(c.Routes.Items, c.ItemCreate, protected).SetName("items.create")
	app.Get(c.Routes.Items+"/:id/edit", c.ItemEdit, protected).SetName("items.edit")
	app.Post(c.Routes.Items+"/:id", c.ItemUpdate, protected).SetName("items.update")
	app.Post(c.Routes.Items+"/:id/delete", c.ItemDelete, protected).SetName("items.delete")
	app.Post(c.Routes.Items+"/:id/purchase", c.ItemPurchase, protected).SetName("items.purchase")
	app.Post(c.Routes.Items+"/:id/restock", c.ItemRestock, protected).SetName("items.restock")

	return c
}

// RegisterFallback sends GET requests no other route matched to the home
// page. Register it after every other route, static assets included.
func RegisterFallback[T any](app router.Router[T], routes *Routes) {
	if routes == nil {
		routes = DefaultRoutes()
	}
	app.Get("/*", func(ctx router.Context) error {
		return ctx.Redirect(routes.Home, http.StatusFound)
	}).SetName("fallback.get")
}

// Controller renders the pages of the front end.
type Controller struct {
	Debug        bool
	Logger       Logger
	Config       sweetshop.Config
	Routes       *Routes
	Views        *Views
	ErrorHandler router.ErrorHandler
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller) *Controller

// WithControllerLogger sets the controller logger.
func WithControllerLogger(l Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// WithControllerConfig sets the client config used for routes and cookies.
func WithControllerConfig(cfg sweetshop.Config) ControllerOption {
	return func(c *Controller) *Controller {
		if cfg != nil {
			c.Config = cfg
		}
		return c
	}
}

// WithControllerDebug dumps form payloads to the logger.
func WithControllerDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

// WithRoutes overrides the route table.
func WithRoutes(r *Routes) ControllerOption {
	return func(c *Controller) *Controller {
		if r != nil {
			c.Routes = r
		}
		return c
	}
}

// WithViews overrides the template names.
func WithViews(v *Views) ControllerOption {
	return func(c *Controller) *Controller {
		if v != nil {
			c.Views = v
		}
		return c
	}
}

// WithErrorHandler sets the handler for unexpected failures.
func WithErrorHandler(h router.ErrorHandler) ControllerOption {
	return func(c *Controller) *Controller {
		if h != nil {
			c.ErrorHandler = h
		}
		return c
	}
}

// NewController builds a controller with the default routes and views.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger: sweetshop.DefaultLogger(),
		Config: sweetshop.DefaultSettings(),
		Routes: DefaultRoutes(),
		Views:  DefaultViews(),
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.defaultErrHandler
	}

	return c
}

func (c *Controller) render(ctx router.Context, view string, data router.ViewContext) error {
	return ctx.Render(view, MergeTemplateData(ctx, data))
}

func (c *Controller) dump(label string, payload any) {
	if c.Debug {
		c.Logger.Debug(label, "payload", print.MaybePrettyJSON(payload))
	}
}

func (c *Controller) session(ctx router.Context) (*sweetshop.Session, error) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("request has no session, is SessionMiddleware mounted?")
	}
	return s, nil
}

func (c *Controller) catalog(ctx router.Context) (*sweetshop.CatalogService, error) {
	cat, ok := CatalogFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("request has no catalog service, is SessionMiddleware mounted?")
	}
	return cat, nil
}

// Home is the public landing page for anonymous visitors.
func (c *Controller) Home(ctx router.Context) error {
	return c.render(ctx, c.Views.Home, router.ViewContext{
		"title": "Sweet Shop",
	})
}

func (c *Controller) LoginShow(ctx router.Context) error {
	return c.render(ctx, c.Views.Login, router.ViewContext{
		"title":  "Login",
		"errors": nil,
		"record": LoginRequest{},
	})
}

func (c *Controller) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("login parse payload", "error", err)
		return c.ErrorHandler(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  validationSummary(err),
			"system_message": "Error validating payload",
		}).Status(http.StatusBadRequest).Render(c.Views.Login, MergeTemplateData(ctx, router.ViewContext{
			"title":      "Login",
			"record":     LoginRequest{Email: payload.Email},
			"validation": FormatValidationErrorToMap(err),
		}))
	}

	session, err := c.session(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	res := session.Login(ctx.Context(), payload.Email, payload.Password)
	if !res.Success {
		c.Logger.Info("login rejected", "email", payload.Email, "message", res.Message)
		return flash.WithError(ctx, router.ViewContext{
			"error_message": res.Message,
		}).Status(http.StatusUnauthorized).Render(c.Views.Login, MergeTemplateData(ctx, router.ViewContext{
			"title":         "Login",
			"record":        LoginRequest{Email: payload.Email},
			"error_message": res.Message,
		}))
	}

	redirect := TakeRejected(ctx, c.Config, c.Config.GetLandingRoute())
	c.Logger.Debug("login redirect", "to", redirect)
	return ctx.Redirect(redirect, http.StatusSeeOther)
}

func (c *Controller) LogOut(ctx router.Context) error {
	if session, ok := SessionFrom(ctx); ok {
		session.Logout(ctx.Context())
	}
	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "You have been logged out",
	}).Redirect(c.Routes.Login, http.StatusSeeOther)
}

func (c *Controller) RegistrationShow(ctx router.Context) error {
	return c.render(ctx, c.Views.Register, router.ViewContext{
		"title":  "Register",
		"errors": map[string]string{},
		"record": RegisterRequest{},
	})
}

func (c *Controller) RegistrationCreate(ctx router.Context) error {
	payload := new(RegisterRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("register user parse payload", "error", err)
		return c.ErrorHandler(ctx, err)
	}
	c.dump("register payload", RegisterRequest{Name: payload.Name, Email: payload.Email})

	record := RegisterRequest{Name: payload.Name, Email: payload.Email}

	if err := payload.Validate(); err != nil {
		return flash.WithError(ctx, router.ViewContext{
			"error_message":  validationSummary(err),
			"system_message": "Error validating payload",
		}).Status(http.StatusBadRequest).Render(c.Views.Register, MergeTemplateData(ctx, router.ViewContext{
			"title":      "Register",
			"record":     record,
			"validation": FormatValidationErrorToMap(err),
		}))
	}

	session, err := c.session(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	res := session.Register(ctx.Context(), payload.Registration())
	if !res.Success {
		c.Logger.Info("registration rejected", "email", payload.Email, "message", res.Message)
		return flash.WithError(ctx, router.ViewContext{
			"error_message": res.Message,
		}).Status(http.StatusBadRequest).Render(c.Views.Register, MergeTemplateData(ctx, router.ViewContext{
			"title":         "Register",
			"record":        record,
			"error_message": res.Message,
		}))
	}

	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": "Registration successful, please log in",
	}).Redirect(c.Routes.Login, http.StatusSeeOther)
}

// Dashboard lists or searches the catalog. "?clear=1" drops the search.
func (c *Controller) Dashboard(ctx router.Context) error {
	catalog, err := c.catalog(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	form := sweetshop.SearchForm{}
	if ctx.Query("clear") == "" {
		form = sweetshop.SearchForm{
			Name:     ctx.Query("name"),
			Category: ctx.Query("category"),
			MinPrice: ctx.Query("min_price"),
			MaxPrice: ctx.Query("max_price"),
		}
	}

	page := LoadDashboard(ctx.Context(), catalog, c.Routes.Dashboard, form)
	if page.Error != "" {
		c.Logger.Warn("dashboard fetch failed", "message", page.Error)
	}

	return c.render(ctx, c.Views.Dashboard, router.ViewContext{
		"title": "Dashboard",
		"page":  page.View(),
	})
}

func (c *Controller) ItemNew(ctx router.Context) error {
	return c.render(ctx, c.Views.ItemForm, router.ViewContext{
		"title":  "Add Sweet",
		"action": c.Routes.Items,
		"record": ItemRequest{ReturnTo: ctx.Query("return_to")}.View(),
	})
}

func (c *Controller) ItemCreate(ctx router.Context) error {
	catalog, err := c.catalog(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	payload := new(ItemRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	c.dump("create item payload", payload)

	if err := payload.Validate(); err != nil {
		return c.renderItemForm(ctx, "Add Sweet", c.Routes.Items, payload, validationSummary(err), err)
	}

	msg, err := CreateItem(ctx.Context(), catalog, *payload)
	if err != nil {
		return c.renderItemForm(ctx, "Add Sweet", c.Routes.Items, payload, msg, nil)
	}

	return c.done(ctx, payload.ReturnTo, msg)
}

func (c *Controller) ItemEdit(ctx router.Context) error {
	catalog, err := c.catalog(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	returnTo := ctx.Query("return_to")
	id, ok := itemID(ctx)
	if !ok {
		return c.failed(ctx, returnTo, msgItemNotFound)
	}

	item, err := FindItem(ctx.Context(), catalog, id)
	if err != nil {
		return c.failed(ctx, returnTo, sweetshop.Message(err, msgLoadFailed))
	}

	record := NewItemRequest(*item)
	record.ReturnTo = returnTo

	return c.render(ctx, c.Views.ItemForm, router.ViewContext{
		"title":  "Edit Sweet",
		"action": c.itemPath(id, ""),
		"record": record.View(),
	})
}

func (c *Controller) ItemUpdate(ctx router.Context) error {
	catalog, err := c.catalog(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	payload := new(ItemRequest)
	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	c.dump("update item payload", payload)

	id, ok := itemID(ctx)
	if !ok {
		return c.failed(ctx, payload.ReturnTo, msgItemNotFound)
	}

	if err := payload.Validate(); err != nil {
		return c.renderItemForm(ctx, "Edit Sweet", c.itemPath(id, ""), payload, validationSummary(err), err)
	}

	msg, err := UpdateItem(ctx.Context(), catalog, id, *payload)
	if err != nil {
		if sweetshop.IsNotFound(err) {
			return c.failed(ctx, payload.ReturnTo, msg)
		}
		return c.renderItemForm(ctx, "Edit Sweet", c.itemPath(id, ""), payload, msg, nil)
	}

	return c.done(ctx, payload.ReturnTo, msg)
}

func (c *Controller) ItemDelete(ctx router.Context) error {
	return mutateRedirect(c, ctx, new(ReturnRequest), func(r *ReturnRequest) string { return r.ReturnTo },
		func(id int, catalog *sweetshop.CatalogService, _ *ReturnRequest) (string, error) {
			return DeleteItem(ctx.Context(), catalog, id)
		})
}

func (c *Controller) ItemPurchase(ctx router.Context) error {
	return mutateRedirect(c, ctx, new(PurchaseRequest), func(r *PurchaseRequest) string { return r.ReturnTo },
		func(id int, catalog *sweetshop.CatalogService, r *PurchaseRequest) (string, error) {
			if err := r.Validate(); err != nil {
				return "Quantity must be at least 1", err
			}
			return Purchase(ctx.Context(), catalog, id, *r)
		})
}

func (c *Controller) ItemRestock(ctx router.Context) error {
	return mutateRedirect(c, ctx, new(RestockRequest), func(r *RestockRequest) string { return r.ReturnTo },
		func(id int, catalog *sweetshop.CatalogService, r *RestockRequest) (string, error) {
			if err := r.Validate(); err != nil {
				return "Quantity must be at least 1", err
			}
			return Restock(ctx.Context(), catalog, id, *r)
		})
}

// mutateRedirect binds payload, runs op for the item in the path and redirects back
// to the dashboard with the outcome flashed.
func mutateRedirect[P any](c *Controller, ctx router.Context, payload *P, returnTo func(*P) string,
	op func(int, *sweetshop.CatalogService, *P) (string, error)) error {
	catalog, err := c.catalog(ctx)
	if err != nil {
		return c.ErrorHandler(ctx, err)
	}

	if err := ctx.Bind(payload); err != nil {
		return c.ErrorHandler(ctx, err)
	}
	c.dump("item mutation payload", payload)

	back := returnTo(payload)
	id, ok := itemID(ctx)
	if !ok {
		return c.failed(ctx, back, msgItemNotFound)
	}

	msg, err := op(id, catalog, payload)
	if err != nil {
		c.Logger.Info("item mutation rejected", "sweet_id", id, "message", msg, "error", err)
		return c.failed(ctx, back, msg)
	}
	return c.done(ctx, back, msg)
}

func (c *Controller) renderItemForm(ctx router.Context, title, action string, payload *ItemRequest, msg string, verr error) error {
	status := http.StatusBadRequest
	data := router.ViewContext{
		"title":         title,
		"action":        action,
		"record":        payload.View(),
		"error_message": msg,
	}
	if verr != nil {
		data["validation"] = FormatValidationErrorToMap(verr)
	}
	return flash.WithError(ctx, router.ViewContext{
		"error_message": msg,
	}).Status(status).Render(c.Views.ItemForm, MergeTemplateData(ctx, data))
}

func (c *Controller) done(ctx router.Context, returnTo, msg string) error {
	return flash.WithSuccess(ctx, router.ViewContext{
		"system_message": msg,
	}).Redirect(SafeRedirect(returnTo, c.Routes.Dashboard), http.StatusSeeOther)
}

func (c *Controller) failed(ctx router.Context, returnTo, msg string) error {
	return flash.WithError(ctx, router.ViewContext{
		"error_message": msg,
	}).Redirect(SafeRedirect(returnTo, c.Routes.Dashboard), http.StatusSeeOther)
}

func (c *Controller) itemPath(id int, action string) string {
	p := c.Routes.Items + "/" + strconv.Itoa(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Controller) defaultErrHandler(ctx router.Context, err error) error {
	c.Logger.Error("request failed", "path", ctx.Path(), "error", err)
	return ctx.Status(http.StatusInternalServerError).Render(c.Views.Error, MergeTemplateData(ctx, router.ViewContext{
		"title":   "Error",
		"message": err.Error(),
	}))
}

func itemID(ctx router.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
