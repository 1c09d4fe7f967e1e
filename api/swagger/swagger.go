package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SonarQube Changelog API",
        "description": "Quality profile and issue change history.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Quality Profiles", "description": "Rule activation history of quality profiles"},
        {"name": "Issues", "description": "Issue detail, field changes and comments"},
        {"name": "Observability", "description": "Health and counters"}
    ],
    "paths": {
        "/qualityprofiles/changelog": {
            "get": {
                "tags": ["Quality Profiles"],
                "summary": "Profile changelog",
                "description": "Changes of one profile, newest first. since and to are inclusive calendar dates or date-times.",
                "parameters": [
                    {"name": "profileKey", "in": "query", "type": "string", "required": true},
                    {"name": "since", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "p", "in": "query", "type": "integer"},
                    {"name": "ps", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid bounds", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Quality Profiles"],
                "summary": "Record a rule activation change",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordProfileChangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Administrators only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Nothing changed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/qualityprofiles/changelog/export": {
            "get": {
                "tags": ["Quality Profiles"],
                "summary": "Download a profile changelog",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "profileKey", "in": "query", "type": "string", "required": true},
                    {"name": "since", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/issues/show": {
            "get": {
                "tags": ["Issues"],
                "summary": "Issue detail",
                "parameters": [
                    {"name": "key", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown issue", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/issues/changes": {
            "post": {
                "tags": ["Issues"],
                "summary": "Record issue field changes",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordIssueChangeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Nothing changed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/issues/comments": {
            "post": {
                "tags": ["Issues"],
                "summary": "Comment an issue",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddIssueCommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Observability"],
                "summary": "Aggregated service counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ParamChange": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "old": {"type": "string"},
                "new": {"type": "string"}
            }
        },
        "FieldDiff": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "old": {"type": "string"},
                "new": {"type": "string"}
            }
        },
        "RecordProfileChangeRequest": {
            "type": "object",
            "required": ["profileKey", "action", "ruleKey"],
            "properties": {
                "profileKey": {"type": "string"},
                "action": {"type": "string", "enum": ["ACTIVATED", "DEACTIVATED", "UPDATED"]},
                "ruleKey": {"type": "string"},
                "severity": {"type": "string"},
                "inheritance": {"type": "string"},
                "params": {"type": "array", "items": {"$ref": "#/definitions/ParamChange"}}
            }
        },
        "RecordIssueChangeRequest": {
            "type": "object",
            "required": ["issueKey", "diffs"],
            "properties": {
                "issueKey": {"type": "string"},
                "diffs": {"type": "array", "items": {"$ref": "#/definitions/FieldDiff"}}
            }
        },
        "AddIssueCommentRequest": {
            "type": "object",
            "required": ["issueKey", "text"],
            "properties": {
                "issueKey": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "Paging": {
            "type": "object",
            "properties": {
                "pageIndex": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"}
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
