package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/views"
)

// problemToHTTP picks the response status for a view outcome.
func problemToHTTP(p views.Problem) int {
	switch p {
	case views.ProblemNone:
		return http.StatusOK
	case views.ProblemValidation:
		return http.StatusBadRequest
	case views.ProblemAuth:
		return http.StatusUnauthorized
	case views.ProblemNotFound:
		return http.StatusNotFound
	case views.ProblemCanceled:
		return 499 // client closed request
	default:
		return http.StatusBadGateway
	}
}

// page renders a GET view. A view that wants to navigate becomes a redirect.
func page(c *gin.Context, st *views.Status, v any) {
	if st.Redirect != "" {
		c.Redirect(http.StatusFound, st.Redirect)
		return
	}
	c.JSON(problemToHTTP(st.Problem), v)
}

// action renders the outcome of a submit; navigation stays in the body.
func action(c *gin.Context, st *views.Status, v any) {
	c.JSON(problemToHTTP(st.Problem), v)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
