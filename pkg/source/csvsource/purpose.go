package csvsource

import "strings"

// Purpose categories items are normalized into. An unrecognized purpose
// is kept verbatim in lowercase so identical rows still group together.
const (
	PurposeWeb           = "web"
	PurposeApp           = "app"
	PurposeDatabase      = "database"
	PurposeStorage       = "storage"
	PurposeNetworkCore   = "network-core"
	PurposeNetworkAccess = "network-access"
	PurposeSecurity      = "security"
	PurposeLoadBalancer  = "loadbalancer"
	PurposeBackup        = "backup"
	PurposeMonitoring    = "monitoring"
	PurposeManagement    = "management"
	PurposeCache         = "cache"
	PurposePower         = "power"
	PurposeOther         = "other"
)

// purposeAliases folds the free-form purpose cells seen in exports onto
// the canonical categories.
var purposeAliases = map[string]string{
	"web":        PurposeWeb,
	"web server": PurposeWeb,

	"app":                PurposeApp,
	"application":        PurposeApp,
	"application server": PurposeApp,

	"db":              PurposeDatabase,
	"database":        PurposeDatabase,
	"database server": PurposeDatabase,

	"storage": PurposeStorage,
	"san":     PurposeStorage,
	"nas":     PurposeStorage,

	"network": PurposeNetworkCore,
	"router":  PurposeNetworkCore,
	"core":    PurposeNetworkCore,

	"switch": PurposeNetworkAccess,
	"access": PurposeNetworkAccess,

	"security": PurposeSecurity,
	"firewall": PurposeSecurity,

	"lb":            PurposeLoadBalancer,
	"load balancer": PurposeLoadBalancer,
	"loadbalancer":  PurposeLoadBalancer,

	"backup":        PurposeBackup,
	"backup server": PurposeBackup,

	"monitor":        PurposeMonitoring,
	"monitoring":     PurposeMonitoring,
	"monitor server": PurposeMonitoring,

	"management": PurposeManagement,
	"kvm":        PurposeManagement,

	"cache": PurposeCache,
	"redis": PurposeCache,

	"power": PurposePower,
	"ups":   PurposePower,
	"pdu":   PurposePower,
}

// aliasOrder fixes the match order for the substring fallback, the more
// specific aliases first so "web server" beats "server" style overlaps.
var aliasOrder = []string{
	"application server", "database server", "monitor server",
	"backup server", "load balancer", "loadbalancer", "web server",
	"application", "management", "monitoring", "firewall", "security",
	"database", "storage", "network", "monitor", "backup", "switch",
	"access", "router", "cache", "redis", "power", "core", "web", "app",
	"kvm", "san", "nas", "ups", "pdu", "db", "lb",
}

// NormalizePurpose folds a free-form purpose cell onto a canonical
// category. Empty input maps to PurposeOther.
func NormalizePurpose(s string) string {
	key := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
	if key == "" {
		return PurposeOther
	}
	if canon, ok := purposeAliases[key]; ok {
		return canon
	}
	// Substring fallback for cells like "core switch" or "edge router".
	for _, alias := range aliasOrder {
		if strings.Contains(key, alias) {
			return purposeAliases[alias]
		}
	}
	return key
}
