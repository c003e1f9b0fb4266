// Package swagger holds the generated OpenAPI document for the API.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/scheduling/runs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["scheduling"],
                "summary": "Execute a full scheduling run",
                "parameters": [{
                    "name": "request",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/dto.RunScheduleRequest"}
                }],
                "responses": {
                    "200": {"description": "Run summary"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Solver infeasibility"}
                }
            }
        },
        "/scheduling/runs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["scheduling"],
                "summary": "Fetch a persisted run report",
                "parameters": [{
                    "name": "id",
                    "in": "path",
                    "type": "string",
                    "required": true
                }],
                "responses": {
                    "200": {"description": "Run summary"},
                    "404": {"description": "Run not found"}
                }
            }
        },
        "/scheduling/suggestions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["scheduling"],
                "summary": "Suggest feasible dates for a patient",
                "parameters": [{
                    "name": "request",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/dto.SuggestRequest"}
                }],
                "responses": {
                    "200": {"description": "Ranked candidates"},
                    "409": {"description": "No feasible slot"}
                }
            }
        },
        "/scheduling/commitments": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["scheduling"],
                "summary": "Commit a suggested candidate",
                "parameters": [{
                    "name": "request",
                    "in": "body",
                    "required": true,
                    "schema": {"$ref": "#/definitions/dto.CommitRequest"}
                }],
                "responses": {
                    "204": {"description": "Committed"},
                    "409": {"description": "Candidate no longer available"}
                }
            }
        },
        "/rooms/{id}/schedule": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["schedule"],
                "summary": "Get a room's materialized schedule",
                "parameters": [{
                    "name": "id",
                    "in": "path",
                    "type": "string",
                    "required": true
                }],
                "responses": {
                    "200": {"description": "Room schedule"},
                    "404": {"description": "Room not found"}
                }
            }
        },
        "/schedule/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["schedule"],
                "summary": "Download the full schedule",
                "parameters": [{
                    "name": "format",
                    "in": "query",
                    "type": "string",
                    "description": "csv or pdf"
                }],
                "responses": {
                    "200": {"description": "Schedule document"},
                    "400": {"description": "Unsupported format"}
                }
            }
        }
    },
    "definitions": {
        "dto.RunScheduleRequest": {
            "type": "object",
            "required": ["start_date"],
            "properties": {
                "start_date": {"type": "string", "example": "2026-09-01"}
            }
        },
        "dto.SuggestRequest": {
            "type": "object",
            "required": ["patient_uuid"],
            "properties": {
                "patient_uuid": {"type": "string"}
            }
        },
        "dto.CommitRequest": {
            "type": "object",
            "required": ["patient_uuid", "room_id", "date", "start", "surgeon"],
            "properties": {
                "patient_uuid": {"type": "string"},
                "room_id": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-01"},
                "start": {"type": "string", "example": "2026-09-01T08:00:00Z"},
                "surgeon": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Operating Room Scheduling API",
	Description:      "Two phase surgical scheduling: room and day distribution via CP-SAT, then greedy patient to slot matching.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
