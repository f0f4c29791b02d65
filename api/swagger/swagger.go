package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy API",
        "description": "Student management and dashboard scheduling backend",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Registration, profiles and assignments"},
        {"name": "Dashboard", "description": "Aggregated weekly schedule"},
        {"name": "Auth", "description": "Staff authentication"},
        {"name": "Exports", "description": "Roster downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/students/register": {
            "post": {
                "tags": ["Students"],
                "summary": "Register a student or teacher",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "user", "in": "formData", "required": true, "type": "string", "description": "User payload (JSON string)"},
                    {"name": "student_details", "in": "formData", "type": "string", "description": "Student details payload (JSON string)"},
                    {"name": "grade_ids", "in": "formData", "type": "string", "description": "Grade id array (JSON string)"},
                    {"name": "slot_ids", "in": "formData", "type": "string", "description": "Slot id array (JSON string)"},
                    {"name": "branch_ids", "in": "formData", "type": "string", "description": "Branch id array (JSON string)"},
                    {"name": "photo", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation or processing failure"}
                }
            }
        },
        "/students/{userId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Fetch a student with nested details",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentProfile"}},
                    "404": {"description": "Student not found"}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update a student or teacher profile",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"},
                    {"name": "user", "in": "formData", "type": "string"},
                    {"name": "student_details", "in": "formData", "type": "string"},
                    {"name": "grade_ids", "in": "formData", "type": "string"},
                    {"name": "slot_ids", "in": "formData", "type": "string"},
                    {"name": "status", "in": "formData", "type": "string"},
                    {"name": "photo", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Validation or processing failure"}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Hard-delete a student and all related rows",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted"},
                    "400": {"description": "Failure"}
                }
            }
        },
        "/students/{userId}/profile": {
            "post": {
                "tags": ["Students"],
                "summary": "Create a student profile for an existing user",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "student_no", "in": "formData", "required": true, "type": "string"},
                    {"name": "salutation", "in": "formData", "type": "string"},
                    {"name": "ice_contact", "in": "formData", "type": "string"},
                    {"name": "photo", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Failure"}
                }
            }
        },
        "/students/{userId}/grades": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's grade assignments",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/students/{userId}/photo": {
            "post": {
                "tags": ["Students"],
                "summary": "Replace a student's photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "photo", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Failure"}
                }
            }
        },
        "/students/{studentId}/branches": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's branches",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Failed to fetch branches"}
                }
            }
        },
        "/students/{studentId}/slots": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's slot enrolments",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Failed to fetch slots"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Aggregated weekly class schedule",
                "parameters": [
                    {"name": "branchId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Failed to fetch dashboard schedule"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Staff login",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/exports/students": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the student roster",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "description": "csv (default) or pdf"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format"}
                }
            }
        }
    },
    "definitions": {
        "StudentProfile": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "username": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "status": {"type": "string"},
                "StudentDetail": {"$ref": "#/definitions/StudentDetails"}
            }
        },
        "StudentDetails": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "student_no": {"type": "string"},
                "salutation": {"type": "string"},
                "ice_contact": {"type": "string"},
                "photo_url": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
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
