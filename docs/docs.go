// Package docs registers the Stock Ledger API document with swag.
// Regenerate with: swag init -g cmd/inventory/docs.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/inventory": {
            "get": {
                "tags": ["Inventory"],
                "summary": "List inventory items",
                "parameters": [
                    {"type": "string", "description": "FRONT or BACK", "name": "location", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "post": {
                "tags": ["Inventory"],
                "summary": "Create an inventory item",
                "parameters": [
                    {"description": "Item", "name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createInventoryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/inventory/low-stock": {
            "get": {
                "tags": ["Inventory"],
                "summary": "Items at or under their threshold",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/inventory/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["Inventory"],
                "summary": "Stream the full item set on every change",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/inventory/{id}": {
            "get": {
                "tags": ["Inventory"],
                "summary": "Get an inventory item",
                "parameters": [
                    {"type": "string", "description": "Item ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "patch": {
                "tags": ["Inventory"],
                "summary": "Update item attributes",
                "parameters": [
                    {"type": "string", "description": "Item ID", "name": "id", "in": "path", "required": true},
                    {"description": "Attributes", "name": "item", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.updateInventoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "delete": {
                "tags": ["Inventory"],
                "summary": "Delete an inventory item",
                "parameters": [
                    {"type": "string", "description": "Item ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/movements": {
            "get": {
                "tags": ["Movements"],
                "summary": "List movements newest first",
                "parameters": [
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"},
                    {"type": "string", "description": "Cursor from the previous page", "name": "cursor", "in": "query"},
                    {"type": "string", "description": "Only movements of this item", "name": "item_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "post": {
                "tags": ["Movements"],
                "summary": "Record a movement",
                "parameters": [
                    {"description": "Movement", "name": "movement", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.createMovementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Insufficient stock", "schema": {"$ref": "#/definitions/http.Response"}},
                    "503": {"description": "Commit failed", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/movements/recent": {
            "get": {
                "tags": ["Movements"],
                "summary": "Most recent movements",
                "parameters": [
                    {"type": "integer", "description": "Limit", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/movements/range": {
            "get": {
                "tags": ["Movements"],
                "summary": "Movements in an inclusive date range",
                "parameters": [
                    {"type": "string", "description": "RFC3339 start", "name": "start", "in": "query", "required": true},
                    {"type": "string", "description": "RFC3339 end", "name": "end", "in": "query", "required": true},
                    {"type": "integer", "description": "Maximum number of movements (default and cap 1000)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/movements/stream": {
            "get": {
                "produces": ["text/event-stream"],
                "tags": ["Movements"],
                "summary": "Stream the first ledger page on every change",
                "parameters": [
                    {"type": "integer", "description": "Page size", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/movements/{id}": {
            "get": {
                "tags": ["Movements"],
                "summary": "Get a movement",
                "parameters": [
                    {"type": "string", "description": "Movement ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "put": {
                "tags": ["Movements"],
                "summary": "Replace the fields of a movement",
                "parameters": [
                    {"type": "string", "description": "Movement ID", "name": "id", "in": "path", "required": true},
                    {"description": "Movement", "name": "movement", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.updateMovementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Insufficient stock", "schema": {"$ref": "#/definitions/http.Response"}},
                    "503": {"description": "Commit failed", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            },
            "delete": {
                "tags": ["Movements"],
                "summary": "Delete a movement and reverse its effect",
                "parameters": [
                    {"type": "string", "description": "Movement ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Insufficient stock", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/api/movements/{id}/complete": {
            "post": {
                "tags": ["Movements"],
                "summary": "Apply a pending movement",
                "parameters": [
                    {"type": "string", "description": "Movement ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.Response"}},
                    "409": {"description": "Insufficient stock", "schema": {"$ref": "#/definitions/http.Response"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Dependency health",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "http.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {"type": "string"}
            }
        },
        "http.createInventoryRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "quantity": {"type": "integer"},
                "location": {"type": "string", "enum": ["FRONT", "BACK"]},
                "threshold": {"type": "integer"},
                "unit_price": {"type": "string"},
                "actor_id": {"type": "string"}
            }
        },
        "http.updateInventoryRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "threshold": {"type": "integer"},
                "unit_price": {"type": "string"},
                "actor_id": {"type": "string"}
            }
        },
        "http.createMovementRequest": {
            "type": "object",
            "properties": {
                "item_id": {"type": "string"},
                "type": {"type": "string", "enum": ["STOCK_IN", "STOCK_SOLD", "TRANSFER"]},
                "quantity": {"type": "integer"},
                "source_location": {"type": "string"},
                "dest_location": {"type": "string"},
                "notes": {"type": "string"},
                "actor_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PENDING", "COMPLETED"]}
            }
        },
        "http.updateMovementRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "quantity": {"type": "integer"},
                "source_location": {"type": "string"},
                "dest_location": {"type": "string"},
                "notes": {"type": "string"},
                "actor_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8082",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Stock Ledger API",
	Description:      "Inventory movement ledger with full observability (logging, tracing, metrics)",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
