package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Alumni Network API",
        "description": "Alumni directory, spreadsheet import, identity provisioning and event mail.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Directory", "description": "Public alumni directory"},
        {"name": "Accounts", "description": "Registration and verification"},
        {"name": "Imports", "description": "Spreadsheet import and provisioning"},
        {"name": "Broadcasts", "description": "Bulk event invitations"},
        {"name": "Achievements", "description": "Landing page highlights"},
        {"name": "Exports", "description": "Directory exports"}
    ],
    "paths": {
        "/alumni": {
            "get": {
                "tags": ["Directory"],
                "summary": "List alumni",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "course", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string", "enum": ["name", "year", "department", "created_at"]},
                    {"name": "sort_order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/alumni/{uid}": {
            "get": {
                "tags": ["Directory"],
                "summary": "Get one alumni record",
                "parameters": [{"name": "uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/accounts/{uid}/verification": {
            "get": {
                "tags": ["Accounts"],
                "summary": "Report whether an account is verified",
                "parameters": [{"name": "uid", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown uid, data carries verified=false", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations": {
            "post": {
                "tags": ["Accounts"],
                "summary": "Register the signed-in caller as an alumnus",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegistrationRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile": {
            "put": {
                "tags": ["Accounts"],
                "summary": "Update the caller's alumni profile",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/imports": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import alumni from a CSV spreadsheet",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "required": true, "type": "file"}],
                "responses": {
                    "201": {"description": "Import report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Upload too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/provisioning/run": {
            "post": {
                "tags": ["Imports"],
                "summary": "Invite every pending account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Provisioning report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A run is already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/broadcasts": {
            "post": {
                "tags": ["Broadcasts"],
                "summary": "Mail an event invitation to every alumnus",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventDetails"}}],
                "responses": {"200": {"description": "Broadcast report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/achievements": {
            "get": {
                "tags": ["Achievements"],
                "summary": "List achievements",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/admin/alumni/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the directory as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}],
                "responses": {"201": {"description": "Signed download link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a generated export",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "403": {"description": "Invalid link"}, "404": {"description": "Expired"}}
            }
        }
    },
    "definitions": {
        "RegistrationRequest": {
            "type": "object",
            "properties": {
                "reg_no": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "year_of_passing_out": {"type": "integer"},
                "department": {"type": "string"},
                "course": {"type": "string"}
            },
            "required": ["reg_no", "name", "email", "year_of_passing_out"]
        },
        "EventDetails": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "timing": {"type": "string"},
                "date": {"type": "string"},
                "location": {"type": "string"},
                "attachments": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "filename": {"type": "string"},
                            "content_type": {"type": "string"},
                            "content": {"type": "string", "format": "byte"}
                        }
                    }
                }
            },
            "required": ["title", "description", "timing", "date", "location"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
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
