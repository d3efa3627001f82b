//go:build !swag

package swaggerkit

// docReader returns a skeleton so the UI still loads without generated docs
var docReader = func() string {
	return `{"openapi":"3.0.3","info":{"title":"Brushline API","version":"0.1.0"},"paths":{}}`
}
