package guard

import "strings"

// Route describes one navigable view and its access requirement. Route
// descriptors are immutable and defined at startup; the assurance requirement
// is implicit (see Guard.Decide): a protected route demands an elevated
// session whenever the account has a verified MFA factor to step up to.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
}

// RouteTable matches navigation targets against the route descriptors and
// knows the two special routes: the login/step-up view and the default
// authenticated landing view.
type RouteTable struct {
	routes    []Route
	loginPath string
	homePath  string
}

// NewRouteTable builds an immutable route table.
func NewRouteTable(loginPath, homePath string, routes []Route) *RouteTable {
	return &RouteTable{
		routes:    routes,
		loginPath: loginPath,
		homePath:  homePath,
	}
}

// DefaultRouteTable returns the application's route table. "/auth" hosts both
// login and MFA step-up; "/templates" is where authenticated users land.
func DefaultRouteTable() *RouteTable {
	return NewRouteTable("/auth", "/templates", []Route{
		{Path: "/", Name: "Home", RequiresAuth: false},
		{Path: "/auth", Name: "Auth", RequiresAuth: false},
		{Path: "/templates", Name: "TemplatesList", RequiresAuth: true},
		{Path: "/templates/:id", Name: "TemplateDetail", RequiresAuth: true},
		{Path: "/designs", Name: "DesignsList", RequiresAuth: true},
		{Path: "/collections", Name: "CollectionsList", RequiresAuth: true},
		{Path: "/transformations", Name: "TransformationsList", RequiresAuth: true},
		{Path: "/admin/policies", Name: "PolicyInspector", RequiresAuth: true},
	})
}

// LoginPath returns the login/step-up route path.
func (rt *RouteTable) LoginPath() string { return rt.loginPath }

// HomePath returns the default authenticated landing route path.
func (rt *RouteTable) HomePath() string { return rt.homePath }

// IsLogin reports whether path targets the login/step-up route.
func (rt *RouteTable) IsLogin(path string) bool {
	return normalize(path) == rt.loginPath
}

// Match resolves a path against the table. Unknown paths return (Route{}, false);
// the zero Route requires no auth, so unmatched navigations proceed and the
// hosting dispatcher renders its not-found view.
func (rt *RouteTable) Match(path string) (Route, bool) {
	target := splitPath(normalize(path))
	for _, route := range rt.routes {
		if segmentsMatch(splitPath(route.Path), target) {
			return route, true
		}
	}
	return Route{}, false
}

func normalize(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// segmentsMatch compares a route pattern against target segments; pattern
// segments starting with ':' match any single segment.
func segmentsMatch(pattern, target []string) bool {
	if len(pattern) != len(target) {
		return false
	}
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != target[i] {
			return false
		}
	}
	return true
}
