// Package geocode resolves free-text addresses into coordinates.
//
// A lookup that the provider answers with "no match" is a client error
// (domain.KindGeocoding). Anything else that goes wrong on the way to the
// provider is reported as ErrUnavailable. Lookups are never retried.
package geocode

import (
	"context"
	"errors"

	"places-api/internal/domain"
)

// MsgNoMatch 与旧服务文案一致
const MsgNoMatch = "Could not find the location for the specified address"

// ErrUnavailable wraps transport and provider-side failures.
var ErrUnavailable = errors.New("geocoder unavailable")

type Geocoder interface {
	Lookup(ctx context.Context, address string) (domain.Location, error)
}

// Static 返回固定坐标，开发环境绕过外部 API
type Static struct {
	Loc domain.Location
}

func (s Static) Lookup(_ context.Context, address string) (domain.Location, error) {
	if address == "" {
		return domain.Location{}, domain.Geocoding(MsgNoMatch)
	}
	return s.Loc, nil
}
