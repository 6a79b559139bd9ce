package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/AlibekovAA/estate-hub/internal/common/constants"
	commonerrors "github.com/AlibekovAA/estate-hub/internal/common/errors"
	"github.com/AlibekovAA/estate-hub/internal/listing/domain"
)

// parseFilter treats empty query values as absent.
func parseFilter(q url.Values) (domain.Filter, error) {
	filter := domain.Filter{
		MinPrice: constants.DefaultMinPrice,
		MaxPrice: constants.DefaultMaxPrice,
	}

	if city := strings.TrimSpace(q.Get("city")); city != "" {
		filter.City = &city
	}
	if v := q.Get("type"); v != "" {
		t := domain.Type(v)
		if !t.Valid() {
			return domain.Filter{}, invalidFilter("type", v)
		}
		filter.Type = &t
	}
	if v := q.Get("property"); v != "" {
		p := domain.Property(v)
		if !p.Valid() {
			return domain.Filter{}, invalidFilter("property", v)
		}
		filter.Property = &p
	}
	if v := q.Get("bedroom"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.Filter{}, invalidFilter("bedroom", v)
		}
		filter.Bedroom = &n
	}
	if v := q.Get("minPrice"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Filter{}, invalidFilter("minPrice", v)
		}
		filter.MinPrice = n
	}
	if v := q.Get("maxPrice"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Filter{}, invalidFilter("maxPrice", v)
		}
		filter.MaxPrice = n
	}

	return filter, nil
}

func invalidFilter(name, value string) error {
	return commonerrors.ErrInvalidFilter.WithCause(fmt.Errorf("%s=%q", name, value))
}
