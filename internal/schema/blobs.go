package schema

// Blob keys. Each persisted key has exactly one schema.
const (
	KeyUsers         = "users"
	KeyRequests      = "requests"
	KeyNotifications = "notifications"
	KeyCurrentUser   = "currentUser"
	KeyCurrentView   = "currentView"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name", "email", "role"],
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string"},
		"email": {"type": "string"},
		"phone": {"type": "string"},
		"credentialSecret": {"type": "string"},
		"role": {"enum": ["citizen", "admin"]}
	}
}`

const coordinatesSchema = `{
	"type": "object",
	"required": ["lat", "lng"],
	"properties": {
		"lat": {"type": "number", "minimum": -90, "maximum": 90},
		"lng": {"type": "number", "minimum": -180, "maximum": 180}
	}
}`

// BlobSchemas maps blob keys to their JSON schemas
var BlobSchemas = map[string]string{
	KeyUsers: `{"type": "array", "items": ` + userSchema + `}`,

	KeyRequests: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "protocol", "type", "status", "priority", "coordinates", "timeline"],
			"properties": {
				"id": {"type": "integer", "minimum": 1},
				"protocol": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{4,}-LP$"},
				"type": {"type": "string"},
				"address": {"type": "string"},
				"status": {"enum": ["pending", "progress", "done", "cancelled"]},
				"priority": {"enum": ["low", "medium", "high", "critical"]},
				"coordinates": ` + coordinatesSchema + `,
				"timeline": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"required": ["title", "kind"],
						"properties": {
							"kind": {"enum": ["received", "dispatched", "completed", "cancelled"]}
						}
					}
				}
			}
		}
	}`,

	KeyNotifications: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "message", "read"],
			"properties": {
				"id": {"type": "string"},
				"message": {"type": "string"},
				"timestamp": {"type": "string"},
				"read": {"type": "boolean"}
			}
		}
	}`,

	KeyCurrentUser: `{
		"type": "object",
		"required": ["role"],
		"properties": {"role": {"enum": ["citizen", "admin"]}}
	}`,

	KeyCurrentView: `{"enum": ["login", "citizen", "admin"]}`,
}
