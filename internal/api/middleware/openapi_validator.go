package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmigrate.io/vmigrate/internal/api/openapi"
	"vmigrate.io/vmigrate/internal/pkg/logger"
)

// Codes rendered by the validator itself. They never reach ErrorHandler.
const (
	CodeOpenAPIRoute    = "OPENAPI_ROUTE_INVALID"
	CodeOpenAPIRequest  = "OPENAPI_REQUEST_INVALID"
	CodeOpenAPIResponse = "OPENAPI_RESPONSE_INVALID"
)

// MustOpenAPIValidator is NewOpenAPIValidator that panics on setup failure.
func MustOpenAPIValidator(basePath string) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(basePath)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator checks requests and responses against the embedded
// OpenAPI document. Document paths are relative to basePath.
//
// A request that breaks the contract is answered with 400 and never reaches
// a handler. Responses are buffered; one that breaks the contract is
// replaced by a 500. Paths the document does not describe pass through.
// Install it before ErrorHandler so rendered errors are checked too.
func NewOpenAPIValidator(basePath string) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}
	v := &contractValidator{router: router, basePath: normalizeBasePath(basePath)}
	return v.handle, nil
}

type contractValidator struct {
	router   routers.Router
	basePath string
}

var noAuth = &openapi3filter.Options{
	AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
}

func (v *contractValidator) handle(c *gin.Context) {
	route, params, err := v.findRoute(c.Request)
	if err != nil {
		if isPathNotFound(err) {
			c.Next()
			return
		}
		rejectContract(c, http.StatusBadRequest, CodeOpenAPIRoute, err.Error())
		return
	}

	reqInput := &openapi3filter.RequestValidationInput{
		Request:    c.Request,
		PathParams: params,
		Route:      route,
		Options:    noAuth,
	}
	if err := openapi3filter.ValidateRequest(c.Request.Context(), reqInput); err != nil {
		rejectContract(c, http.StatusBadRequest, CodeOpenAPIRequest, err.Error())
		return
	}

	buf := newResponseBuffer(c.Writer)
	c.Writer = buf
	c.Next()

	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: reqInput,
		Status:                 buf.Status(),
		Header:                 buf.Header().Clone(),
		Options:                noAuth,
	}
	if buf.Size() > 0 {
		respInput.SetBodyBytes(buf.body.Bytes())
	}
	if err := openapi3filter.ValidateResponse(c.Request.Context(), respInput); err != nil {
		logger.Error("OpenAPI response validation failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", buf.Status()),
			zap.Error(err),
		)
		buf.replaceJSON(http.StatusInternalServerError, gin.H{
			"code":    CodeOpenAPIResponse,
			"message": "response does not conform to OpenAPI contract",
		})
	}

	if err := buf.flush(); err != nil {
		logger.Warn("Failed to flush buffered response",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
}

// findRoute matches the request as-is, then with basePath stripped. The
// request URL is restored before returning.
func (v *contractValidator) findRoute(req *http.Request) (*routers.Route, map[string]string, error) {
	origPath, origRaw := req.URL.Path, req.URL.RawPath
	defer func() { req.URL.Path, req.URL.RawPath = origPath, origRaw }()

	route, params, err := v.router.FindRoute(req)
	if err == nil || !isPathNotFound(err) {
		return route, params, err
	}

	stripped := normalizeValidationPath(v.basePath, origPath)
	if stripped == origPath {
		return nil, nil, err
	}
	req.URL.Path = stripped
	if origRaw != "" {
		req.URL.RawPath = normalizeValidationPath(v.basePath, origRaw)
	}
	return v.router.FindRoute(req)
}

func normalizeBasePath(basePath string) string {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// normalizeValidationPath strips basePath from path; "/" is the base itself.
func normalizeValidationPath(basePath, path string) string {
	switch {
	case basePath == "" && path == "":
		return "/"
	case basePath == "":
		return path
	case path == basePath:
		return "/"
	case strings.HasPrefix(path, basePath+"/"):
		return strings.TrimPrefix(path, basePath)
	default:
		return path
	}
}

func isPathNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, routers.ErrPathNotFound) {
		return true
	}
	var routeErr *routers.RouteError
	if errors.As(err, &routeErr) {
		return strings.Contains(routeErr.Reason, routers.ErrPathNotFound.Error())
	}
	return strings.Contains(err.Error(), routers.ErrPathNotFound.Error())
}

func rejectContract(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"code": code, "message": message})
}
