package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Planner API",
        "description": "Exam timetable generation, optimization, and approval workflow",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Scheduling", "description": "Draft generation and annealing optimization"},
        {"name": "Timetable", "description": "Timetable reads and exports"},
        {"name": "Statistics", "description": "Dashboard KPIs and conflict audits"},
        {"name": "Workflow", "description": "Department and final approval ladder"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/optimize/draft": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Build a complete draft timetable",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Draft committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A run is already in progress"},
                    "422": {"description": "Exam demand exceeds room and slot capacity"}
                }
            }
        },
        "/optimize/run": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Optimize the timetable with simulated annealing",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/OptimizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Run committed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A run is already in progress"}
                }
            }
        },
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Flattened timetable listing",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "department_id", "in": "query", "type": "string"},
                    {"name": "program_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetable/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Export the timetable as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "department_id", "in": "query", "type": "string"},
                    {"name": "program_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Rendered export"}
                }
            }
        },
        "/stats/dashboard-kpi": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Timetable KPIs for the dashboard",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "department_id", "in": "query", "type": "string"},
                    {"name": "program_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/conflicts-detailed": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Every violation of the committed timetable",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workflow/validate-dept/{id}": {
            "post": {
                "tags": ["Workflow"],
                "summary": "Approve a department's draft assignments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Promoted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Unresolved hard conflicts"}
                }
            }
        },
        "/workflow/approve-final": {
            "post": {
                "tags": ["Workflow"],
                "summary": "Finalize the timetable",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Finalized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Departments still pending validation"}
                }
            }
        },
        "/workflow/reset": {
            "post": {
                "tags": ["Workflow"],
                "summary": "Reset a department's approvals back to draft",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/ResetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reset", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Finalized assignments require force"}
                }
            }
        },
        "/workflow/status-summary": {
            "get": {
                "tags": ["Workflow"],
                "summary": "Approval workflow status at a glance",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "OptimizeRequest": {
            "type": "object",
            "properties": {
                "from": {"type": "string", "enum": ["current", "draft"]},
                "iteration_budget": {"type": "integer"},
                "time_budget_ms": {"type": "integer"}
            }
        },
        "ResetRequest": {
            "type": "object",
            "properties": {
                "department_id": {"type": "string"},
                "force": {"type": "boolean"}
            }
        },
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
                "meta": {"type": "object"}
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
