package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

var programs = []string{
	"Bachelor of Science in Information Technology",
	"Bachelor of Science in Computer Science",
	"Bachelor of Science in Business Administration",
	"Bachelor of Elementary Education",
	"Computer Systems Servicing NC II",
	"Bookkeeping NC III",
}

var dashboards = map[string]string{
	"/admin":   "Admin dashboard",
	"/faculty": "Faculty dashboard",
	"/student": "Student dashboard",
}

func registerPages(app *echo.Echo) {
	app.GET("/", page("home", "Home", nil))
	app.GET("/about", page("about", "About us", nil))
	app.GET("/programs", page("programs", "Programs", programs))

	// access to dashboards is checked by the guard
	for path, title := range dashboards {
		app.GET(path, page("dashboard", title, nil))
	}
}

func page(name, title string, data interface{}) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return render(ctx, http.StatusOK, name, title, data)
	}
}
