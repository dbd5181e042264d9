package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable API",
        "description": "University timetable construction and conflict management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Operator authentication"},
        {"name": "Scheduler", "description": "Timetable generation and group lifecycle"},
        {"name": "Conflicts", "description": "Conflict detection and repair"},
        {"name": "Editing", "description": "Interactive meeting edits"},
        {"name": "Rooms", "description": "Room catalog management"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate an operator",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/generate": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Generate a timetable for a term",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/groups": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List schedule groups",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/groups/{id}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Get one schedule group",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Scheduler"],
                "summary": "Delete a schedule group",
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/schedules/groups/{id}/meetings": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "List a group's meetings",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/groups/{id}/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Clustered conflict report",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/groups/{id}/repair": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Shift overlapping meetings apart",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/validate-edit": {
            "post": {
                "tags": ["Editing"],
                "summary": "Dry-run a proposed meeting change",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/suggest": {
            "post": {
                "tags": ["Editing"],
                "summary": "Suggest alternative slots",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/schedules/meetings/{id}": {
            "put": {
                "tags": ["Editing"],
                "summary": "Apply an edit to a meeting",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Rooms"],
                "summary": "Create a room",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Get one room",
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Rooms"],
                "summary": "Update a room",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Rooms"],
                "summary": "Delete a room",
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
