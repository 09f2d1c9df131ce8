package httpapi

import (
	"fmt"
	"net/url"

	"github.com/aretw0/arbor/pkg/domain"
)

// QueryAddressBuilder turns event addresses into dispatch URLs for the
// events endpoint, encoding source, type and params as query values.
type QueryAddressBuilder struct {
	// BasePath is the events endpoint, e.g. "/trees/abc/events".
	BasePath string
}

// BuildURL implements ports.AddressBuilder.
func (b QueryAddressBuilder) BuildURL(addr *domain.EventAddress) (string, error) {
	if addr == nil || addr.Type == "" {
		return "", domain.ErrMissingEventType
	}

	q := url.Values{}
	q.Set("source", addr.Source)
	q.Set("type", addr.Type)
	for k, v := range addr.Params {
		q.Set(k, fmt.Sprint(v))
	}
	return b.BasePath + "?" + q.Encode(), nil
}
