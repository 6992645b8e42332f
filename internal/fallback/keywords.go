// ABOUTME: Fixed domain keyword groups and their canned suggestion menus.
// ABOUTME: Scanned in order; the first group with a matching keyword wins.

package fallback

import "github.com/hearthd/hearthd/internal/capability"

// cannedQueries maps supported intents to a query the assistant can run
// verbatim when a suggestion is chosen.
var cannedQueries = map[string]string{
	"network:ping":    "ping 192.168.1.1",
	"network:scan":    "scan the network",
	"camera:view":     "show the front door camera",
	"camera:snapshot": "take a snapshot of the front door",
	"iot:toggle":      "turn on the living room lights",
	"monitor:status":  "device status",
	"system:info":     "system info",
	"browse:url":      "open https://example.com",
	"system:help":     "help",
}

type keywordGroup struct {
	name     string
	keywords []string
	message  string
	actions  []capability.Action
}

var keywordGroups = []keywordGroup{
	{
		name:     "camera",
		keywords: []string{"camera", "cam", "video", "snapshot", "watch", "footage"},
		message:  "I couldn't find a camera capability for that. Here is what I can do with cameras:",
		actions: []capability.Action{
			{ID: "camera-view", Label: "Show the front door camera", Type: capability.ActionExecute, ExecuteQuery: "show the front door camera"},
			{ID: "camera-snapshot", Label: "Take a snapshot", Type: capability.ActionExecute, ExecuteQuery: "take a snapshot of the front door"},
			{ID: "camera-other", Label: "View another camera...", Type: capability.ActionPrefill, PrefillText: "show the "},
		},
	},
	{
		name:     "network",
		keywords: []string{"network", "ping", "scan", "wifi", "reachable", "online", "wake", "device"},
		message:  "I couldn't handle that network request directly. Try one of these:",
		actions: []capability.Action{
			{ID: "network-scan", Label: "Scan the network", Type: capability.ActionExecute, ExecuteQuery: "scan the network"},
			{ID: "network-ping", Label: "Ping a host...", Type: capability.ActionPrefill, PrefillText: "ping "},
			{ID: "network-wake", Label: "Wake a device...", Type: capability.ActionPrefill, PrefillText: "wake "},
		},
	},
	{
		name:     "system",
		keywords: []string{"system", "cpu", "memory", "disk", "uptime", "restart"},
		message:  "I couldn't handle that system request. These are available:",
		actions: []capability.Action{
			{ID: "system-info", Label: "Show system info", Type: capability.ActionExecute, ExecuteQuery: "system info"},
			{ID: "system-help", Label: "List everything I can do", Type: capability.ActionExecute, ExecuteQuery: "help"},
		},
	},
	{
		name:     "iot",
		keywords: []string{"light", "lights", "switch", "plug", "toggle", "thermostat", "turn on", "turn off"},
		message:  "I couldn't find that device. Here is what I can control:",
		actions: []capability.Action{
			{ID: "iot-lights", Label: "Turn on the living room lights", Type: capability.ActionExecute, ExecuteQuery: "turn on the living room lights"},
			{ID: "iot-other", Label: "Control another device...", Type: capability.ActionPrefill, PrefillText: "turn on the "},
		},
	},
	{
		name:     "bridge",
		keywords: []string{"bridge", "hub", "homekit", "zigbee", "matter", "pair"},
		message:  "No bridge capability is installed for that. You could:",
		actions: []capability.Action{
			{ID: "bridge-install", Label: "Install a bridge plugin...", Type: capability.ActionPrefill, PrefillText: "install plugin "},
			{ID: "bridge-help", Label: "See supported bridges", Type: capability.ActionExecute, ExecuteQuery: "help"},
		},
	},
	{
		name:     "marketplace",
		keywords: []string{"install", "uninstall", "plugin", "marketplace", "extension"},
		message:  "Plugin management suggestions:",
		actions: []capability.Action{
			{ID: "marketplace-install", Label: "Install a plugin...", Type: capability.ActionPrefill, PrefillText: "install plugin "},
			{ID: "marketplace-help", Label: "List installed capabilities", Type: capability.ActionExecute, ExecuteQuery: "help"},
		},
	},
	{
		name:     "monitor",
		keywords: []string{"monitor", "alert", "motion", "notify", "watchdog"},
		message:  "Monitoring suggestions:",
		actions: []capability.Action{
			{ID: "monitor-status", Label: "Show device status", Type: capability.ActionExecute, ExecuteQuery: "device status"},
			{ID: "monitor-cameras", Label: "Check the cameras", Type: capability.ActionExecute, ExecuteQuery: "show the front door camera"},
		},
	},
}

// genericGroup is returned when no domain keyword matches. It always includes
// a help action so the menu stays actionable.
var genericGroup = keywordGroup{
	name:    "generic",
	message: "I'm not sure how to help with that yet. Here are some things you can try:",
	actions: []capability.Action{
		{ID: "generic-help", Label: "Show everything I can do", Type: capability.ActionExecute, ExecuteQuery: "help"},
		{ID: "generic-scan", Label: "Scan the network", Type: capability.ActionExecute, ExecuteQuery: "scan the network"},
		{ID: "generic-ask", Label: "Rephrase your request...", Type: capability.ActionPrefill, PrefillText: "I want to "},
	},
}
