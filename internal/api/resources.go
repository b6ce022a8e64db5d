package api

import (
	"encoding/json"
	"fmt"
)

// The resource methods below are uniform CRUD wrappers over the backend's
// REST surface, one block per resource.

// --- servers ---

func (c *Client) ListServers() ([]Server, error) {
	var out []Server
	err := c.get("/servers", &out)
	return out, err
}

func (c *Client) GetServer(id int) (*Server, error) {
	var out Server
	if err := c.get(fmt.Sprintf("/servers/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateServer(s Server) (*Server, error) {
	var out Server
	if err := c.post("/servers", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateServer(id int, s Server) (*Server, error) {
	var out Server
	if err := c.put(fmt.Sprintf("/servers/%d", id), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteServer(id int) error {
	return c.delete(fmt.Sprintf("/servers/%d", id))
}

func (c *Client) ListServerInterfaces(serverID int) ([]NetworkInterface, error) {
	var out []NetworkInterface
	err := c.get(fmt.Sprintf("/servers/%d/interfaces", serverID), &out)
	return out, err
}

func (c *Client) AddServerInterface(serverID int, ni NetworkInterface) (*NetworkInterface, error) {
	var out NetworkInterface
	if err := c.post(fmt.Sprintf("/servers/%d/interfaces", serverID), ni, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteServerInterface(serverID, interfaceID int) error {
	return c.delete(fmt.Sprintf("/servers/%d/interfaces/%d", serverID, interfaceID))
}

// --- checks ---

func (c *Client) ListChecks() ([]Check, error) {
	var out []Check
	err := c.get("/checks", &out)
	return out, err
}

func (c *Client) GetCheck(id int) (*Check, error) {
	var out Check
	if err := c.get(fmt.Sprintf("/checks/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCheck(ch Check) (*Check, error) {
	var out Check
	if err := c.post("/checks", ch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCheck(id int, ch Check) (*Check, error) {
	var out Check
	if err := c.put(fmt.Sprintf("/checks/%d", id), ch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCheck(id int) error {
	return c.delete(fmt.Sprintf("/checks/%d", id))
}

func (c *Client) CheckResults(id, limit int) ([]CheckResult, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []CheckResult
	err := c.get(fmt.Sprintf("/checks/%d/results?limit=%d", id, limit), &out)
	return out, err
}

// RunCheckNow triggers an immediate execution outside the schedule.
func (c *Client) RunCheckNow(id int) error {
	return c.post(fmt.Sprintf("/checks/%d/run", id), nil, nil)
}

// --- routers ---

func (c *Client) ListRouters() ([]Router, error) {
	var out []Router
	err := c.get("/routers", &out)
	return out, err
}

func (c *Client) CreateRouter(r Router) (*Router, error) {
	var out Router
	if err := c.post("/routers", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRouter(id int, r Router) (*Router, error) {
	var out Router
	if err := c.put(fmt.Sprintf("/routers/%d", id), r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRouter(id int) error {
	return c.delete(fmt.Sprintf("/routers/%d", id))
}

// --- docker ---

func (c *Client) ListContainers(serverID int) ([]Container, error) {
	var out []Container
	err := c.get(fmt.Sprintf("/docker/%d/containers", serverID), &out)
	return out, err
}

func (c *Client) RestartContainer(serverID int, containerID string) error {
	return c.post(fmt.Sprintf("/docker/%d/containers/%s/restart", serverID, containerID), nil, nil)
}

// --- companies & users ---

func (c *Client) ListCompanies() ([]Company, error) {
	var out []Company
	err := c.get("/companies", &out)
	return out, err
}

func (c *Client) ListUsers() ([]AccountUser, error) {
	var out []AccountUser
	err := c.get("/users", &out)
	return out, err
}

// --- notifications ---

func (c *Client) ListNotificationChannels() ([]NotificationChannel, error) {
	var out []NotificationChannel
	err := c.get("/notifications/channels", &out)
	return out, err
}

func (c *Client) CreateNotificationChannel(ch NotificationChannel) (*NotificationChannel, error) {
	var out NotificationChannel
	if err := c.post("/notifications/channels", ch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteNotificationChannel(id int) error {
	return c.delete(fmt.Sprintf("/notifications/channels/%d", id))
}

func (c *Client) ListAlertRules() ([]AlertRule, error) {
	var out []AlertRule
	err := c.get("/notifications/rules", &out)
	return out, err
}

func (c *Client) CreateAlertRule(r AlertRule) (*AlertRule, error) {
	var out AlertRule
	if err := c.post("/notifications/rules", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAlertRule(id int) error {
	return c.delete(fmt.Sprintf("/notifications/rules/%d", id))
}

// --- topology ---

func (c *Client) GetTopology() (*Topology, error) {
	var out Topology
	if err := c.get("/topology", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTopologyLink(l TopologyLink) (*TopologyLink, error) {
	var out TopologyLink
	if err := c.post("/topology/links", l, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- backup ---

// ExportBackup downloads the company's configuration backup as raw JSON.
func (c *Client) ExportBackup() ([]byte, error) {
	var out json.RawMessage
	if err := c.get("/backup/export", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportBackup uploads a previously exported (and decrypted) backup.
func (c *Client) ImportBackup(data []byte) error {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("backup is not valid JSON: %w", err)
	}
	return c.post("/backup/import", body, nil)
}
