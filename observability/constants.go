package observability

// Metric name prefixes
const (
	MetricPrefix = "guildkeeper"
)

// Metric names
const (
	// Reaction-role metrics
	RolesGrantedTotal        = MetricPrefix + ".roles.granted_total"
	RolesRevokedTotal        = MetricPrefix + ".roles.revoked_total"
	ReactionsSuppressedTotal = MetricPrefix + ".reactions.suppressed_total"

	// Member-join metrics
	MembersWelcomedTotal  = MetricPrefix + ".members.welcomed_total"
	InvitesRefreshedTotal = MetricPrefix + ".invites.refreshed_total"
)

// Label keys
const (
	LabelAttribution = "attribution"
	LabelDelivered   = "delivered"
	LabelReason      = "reason"
)
