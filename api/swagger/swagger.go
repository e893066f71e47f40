package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Edu DocFlow API",
        "description": "Multi-party document workflow engine for education programs",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and session info"},
        {"name": "Attendance", "description": "Attendance sheet workflow"},
        {"name": "Documents", "description": "Simple submission documents"},
        {"name": "Summary", "description": "Cross-document rollups"},
        {"name": "Bulk", "description": "Admin bulk review"},
        {"name": "Signatures", "description": "Signature image handling"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/educations/{educationId}/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Get attendance sheet (creates a draft when absent)",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Attendance"],
                "summary": "Update sheet content while in teacher custody",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Updated"},
                    "409": {"description": "Sheet is read-only in its current status"}
                }
            }
        },
        "/educations/{educationId}/attendance/ready": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark sheet as ready (idempotent)",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Ready"},
                    "400": {"description": "Required fields missing"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/educations/{educationId}/attendance/signature": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Attach teacher signature and send final version",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Signed"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/educations/{educationId}/attendance/signature-image": {
            "post": {
                "tags": ["Signatures"],
                "summary": "Upload a signature image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "educationId", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {"201": {"description": "Stored"}}
            }
        },
        "/educations/{educationId}/attendance/request": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Instructor requests the sheet from the teacher",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Requested"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/educations/{educationId}/attendance/return": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Instructor returns the sheet with session counts",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Returned"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/educations/{educationId}/attendance/submit": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Instructor submits the signed sheet to admin",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Submitted"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/educations/{educationId}/attendance/review": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Admin approves or rejects the sheet",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Reviewed"},
                    "400": {"description": "Reject requires a reason"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/educations/{educationId}/attendance/completion": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Per-student completion report",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/educations/{educationId}/documents/{type}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get document (creates a draft when absent)",
                "parameters": [
                    {"name": "educationId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Documents"],
                "summary": "Replace document payload while editable",
                "parameters": [
                    {"name": "educationId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Updated"}, "409": {"description": "Read-only"}}
            }
        },
        "/educations/{educationId}/documents/{type}/submit": {
            "post": {
                "tags": ["Documents"],
                "summary": "Submit a draft or rejected document",
                "parameters": [
                    {"name": "educationId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Submitted"},
                    "400": {"description": "Payload validation failed"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/educations/{educationId}/documents/{type}/approve": {
            "post": {
                "tags": ["Documents"],
                "summary": "Admin approves a submitted document",
                "parameters": [
                    {"name": "educationId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Approved"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/educations/{educationId}/documents/{type}/reject": {
            "post": {
                "tags": ["Documents"],
                "summary": "Admin rejects a submitted document with a reason",
                "parameters": [
                    {"name": "educationId", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Rejected"},
                    "400": {"description": "Reason required"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/educations/{educationId}/documents/equipment/return": {
            "post": {
                "tags": ["Documents"],
                "summary": "Confirm the physical return of borrowed equipment",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Return recorded"},
                    "409": {"description": "Equipment is not in a borrowed state"}
                }
            }
        },
        "/educations/{educationId}/documents/bulk-review": {
            "post": {
                "tags": ["Bulk"],
                "summary": "Approve or reject every eligible core document for one education",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Per-document results"}}
            }
        },
        "/bulk-review": {
            "post": {
                "tags": ["Bulk"],
                "summary": "Bulk review across multiple educations",
                "responses": {"200": {"description": "Aggregated results"}}
            }
        },
        "/educations/{educationId}/summary": {
            "get": {
                "tags": ["Summary"],
                "summary": "Per-type status rollup for one education",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/educations/{educationId}/submission-group": {
            "get": {
                "tags": ["Summary"],
                "summary": "Admin review view over the core document types",
                "parameters": [{"name": "educationId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/signatures/{token}": {
            "get": {
                "tags": ["Signatures"],
                "summary": "Download a signature image via a signed token",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Image stream"}, "401": {"description": "Invalid or expired token"}}
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
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"}
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
