package api

import "time"

// Server is a managed host.
type Server struct {
	ID          int    `json:"id,omitempty"`
	CompanyID   int    `json:"company_id,omitempty"`
	Name        string `json:"name"`
	Hostname    string `json:"hostname,omitempty"`
	HasDocker   bool   `json:"has_docker,omitempty"`
	DockerHost  string `json:"docker_host,omitempty"`
	SSHHost     string `json:"ssh_host,omitempty"`
	SSHPort     int    `json:"ssh_port,omitempty"`
	SSHUser     string `json:"ssh_user,omitempty"`
	Environment string `json:"environment,omitempty"`
	OS          string `json:"os,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active,omitempty"`
}

// HasSSH reports whether the server can host a terminal session.
func (s Server) HasSSH() bool {
	return s.SSHHost != "" && s.SSHUser != ""
}

// Company is a tenant visible to the current user.
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// AccountUser is a member of the selected company.
type AccountUser struct {
	ID         int    `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	Superadmin bool   `json:"is_superadmin,omitempty"`
	Active     bool   `json:"active,omitempty"`
}

// NetworkInterface is one address binding on a server or router.
type NetworkInterface struct {
	ID            int    `json:"id,omitempty"`
	ServerID      int    `json:"server_id,omitempty"`
	RouterID      int    `json:"router_id,omitempty"`
	InterfaceName string `json:"interface_name,omitempty"`
	IPAddress     string `json:"ip_address"`
	SubnetMask    string `json:"subnet_mask,omitempty"`
	IsExternal    bool   `json:"is_external,omitempty"`
	IsVPN         bool   `json:"is_vpn,omitempty"`
	IsPrimary     bool   `json:"is_primary,omitempty"`
}

// Check is a monitoring check definition.
type Check struct {
	ID             int        `json:"id,omitempty"`
	CompanyID      int        `json:"company_id,omitempty"`
	ServerID       int        `json:"server_id,omitempty"`
	RouterID       int        `json:"router_id,omitempty"`
	Name           string     `json:"name"`
	CheckType      string     `json:"check_type"`
	Target         string     `json:"target"`
	IntervalSec    int        `json:"interval_sec,omitempty"`
	TimeoutSec     int        `json:"timeout_sec,omitempty"`
	ExpectedStatus int        `json:"expected_status,omitempty"`
	UseSSH         bool       `json:"use_ssh,omitempty"`
	Active         bool       `json:"active,omitempty"`
	LastCheckedAt  *time.Time `json:"last_checked_at,omitempty"`
}

// CheckResult is one execution of a check.
type CheckResult struct {
	ID        int       `json:"id"`
	CheckID   int       `json:"check_id"`
	Status    string    `json:"status"`
	LatencyMS int       `json:"latency_ms,omitempty"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Router is a managed network device.
type Router struct {
	ID         int    `json:"id,omitempty"`
	CompanyID  int    `json:"company_id,omitempty"`
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Model      string `json:"model,omitempty"`
	Location   string `json:"location,omitempty"`
	DeviceType string `json:"device_type,omitempty"`
	Gateway    string `json:"gateway,omitempty"`
	WifiSSID   string `json:"wifi_ssid,omitempty"`
	Active     bool   `json:"active,omitempty"`
}

// Container is a docker container snapshot on a server.
type Container struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
	State  string `json:"state"`
}

// NotificationChannel delivers alerts somewhere (mail, webhook, ...).
type NotificationChannel struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	ChannelType string `json:"channel_type"`
	Target      string `json:"target"`
	Active      bool   `json:"active,omitempty"`
}

// AlertRule connects check outcomes to a channel.
type AlertRule struct {
	ID        int    `json:"id,omitempty"`
	Name      string `json:"name"`
	ChannelID int    `json:"channel_id"`
	Condition string `json:"condition,omitempty"`
	Active    bool   `json:"active,omitempty"`
}

// TopologyNode is one vertex of the network graph.
type TopologyNode struct {
	ID       string  `json:"id"`
	Kind     string  `json:"kind"`
	RefID    int     `json:"ref_id"`
	Label    string  `json:"label"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	ServerID int     `json:"server_id,omitempty"`
	RouterID int     `json:"router_id,omitempty"`
}

// TopologyLink is one edge of the network graph.
type TopologyLink struct {
	ID            int    `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	SourceServer  int    `json:"source_server_id,omitempty"`
	SourceRouter  int    `json:"source_router_id,omitempty"`
	TargetServer  int    `json:"target_server_id,omitempty"`
	TargetRouter  int    `json:"target_router_id,omitempty"`
	LinkType      string `json:"link_type,omitempty"`
	BandwidthMbps int    `json:"bandwidth_mbps,omitempty"`
}

// Topology is the whole graph for the selected company.
type Topology struct {
	Nodes []TopologyNode `json:"nodes"`
	Links []TopologyLink `json:"links"`
}
