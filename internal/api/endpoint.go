package api

import (
	"fmt"
	"net/url"
	"strings"
)

type EndpointKind int

const (
	KindMatchByTier EndpointKind = iota
	KindGuildByID
	KindGuildTeamMemberships
	KindGuildSearch
)

func (k EndpointKind) String() string {
	switch k {
	case KindMatchByTier:
		return "match_by_tier"
	case KindGuildByID:
		return "guild_by_id"
	case KindGuildTeamMemberships:
		return "guild_team_memberships"
	case KindGuildSearch:
		return "guild_search"
	}
	return "unknown"
}

// Endpoint identifies one GW2 API resource. It is a value type so it can be
// queued and compared without touching the network.
type Endpoint struct {
	Kind EndpointKind
	Arg  string
}

// MatchByTier addresses the match for tier within a region, e.g. prefix "2"
// and tier 3 gives /wvw/matches/2-3.
func MatchByTier(regionPrefix string, tier int) Endpoint {
	return Endpoint{Kind: KindMatchByTier, Arg: fmt.Sprintf("%s-%d", regionPrefix, tier)}
}

func GuildByID(id string) Endpoint {
	return Endpoint{Kind: KindGuildByID, Arg: id}
}

// AllGuildTeamMemberships is the region wide guild -> team listing.
func AllGuildTeamMemberships(region string) Endpoint {
	return Endpoint{Kind: KindGuildTeamMemberships, Arg: region}
}

func GuildIDByName(name string) Endpoint {
	return Endpoint{Kind: KindGuildSearch, Arg: name}
}

// URL renders the endpoint against base, which has no trailing slash.
func (e Endpoint) URL(base string) string {
	base = strings.TrimRight(base, "/")
	switch e.Kind {
	case KindMatchByTier:
		return base + "/wvw/matches/" + url.PathEscape(e.Arg)
	case KindGuildByID:
		return base + "/guild/" + url.PathEscape(e.Arg)
	case KindGuildTeamMemberships:
		return base + "/wvw/guilds/" + url.PathEscape(e.Arg)
	case KindGuildSearch:
		return base + "/guild/search?name=" + url.QueryEscape(e.Arg)
	}
	return base
}

func (e Endpoint) String() string {
	return e.Kind.String() + ":" + e.Arg
}
