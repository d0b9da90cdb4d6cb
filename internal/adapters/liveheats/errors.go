package liveheats

import "errors"

var (
	// ErrUpstreamStatus is returned for a non-200 response.
	ErrUpstreamStatus = errors.New("liveheats: unexpected status")
	// ErrGraphQL is returned when the response carries GraphQL errors.
	ErrGraphQL = errors.New("liveheats: graphql error")
	// ErrEventNotFound is returned when the event id is unknown.
	ErrEventNotFound = errors.New("liveheats: event not found")
	// ErrOrganisationNotFound is returned when the organisation short name is unknown.
	ErrOrganisationNotFound = errors.New("liveheats: organisation not found")
)
