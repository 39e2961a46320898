package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bitbucket.org/hovr/booking-site/internal/web/middleware"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// LoadDocument parses and validates an OpenAPI document.
func LoadDocument(content []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	document, err := loader.LoadFromData(content)
	if err != nil {
		return nil, fmt.Errorf("unable to load openapi document: %w", err)
	}

	if err := document.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	return document, nil
}

// OpenapiValidator rejects requests to documented routes that do not match the document.
// Routes the document does not describe pass through.
func OpenapiValidator(document *openapi3.T) (gin.HandlerFunc, error) {
	router, err := gorillamux.NewRouter(document)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
		}

		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			middleware.HandleError(c, http.StatusBadRequest, validationMessage(err), err)
		}
	}, nil
}

func validationMessage(err error) string {
	var requestErr *openapi3filter.RequestError
	if errors.As(err, &requestErr) {
		if requestErr.Parameter != nil {
			return fmt.Sprintf("Invalid parameter %s", requestErr.Parameter.Name)
		}
		if requestErr.RequestBody != nil {
			return fmt.Sprintf("Invalid request body: %s", requestErr.Reason)
		}
	}

	return "Request does not match the API document"
}
