package ports

import "github.com/aretw0/arbor/pkg/domain"

// AddressBuilder turns an opaque EventAddress into a dispatchable URL or
// equivalent descriptor. The core never interprets the result.
type AddressBuilder interface {
	BuildURL(addr *domain.EventAddress) (string, error)
}
