package docs

import "github.com/swaggo/swag"

// docTemplate mirrors the handler annotations in api/handlers.
// Regenerate with `swag init -g cmd/api/main.go` after changing them.
const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/meta": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "meta"
                ],
                "summary": "Option lists",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.MetaDTO"
                        }
                    }
                }
            }
        },
        "/status": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "meta"
                ],
                "summary": "UI coordination state",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.StatusDTO"
                        }
                    }
                }
            }
        },
        "/status/notice": {
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "meta"
                ],
                "summary": "Dismiss the current notice",
                "responses": {
                    "204": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ideas": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "List ideas",
                "parameters": [
                    {
                        "type": "boolean",
                        "name": "favorites",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "category",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "impact",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "effort",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "status",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "name": "sort",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.IdeaListDTO"
                        }
                    }
                }
            },
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Create idea manually",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.IdeaInputDTO"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/template": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Manual idea template",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    }
                }
            }
        },
        "/ideas/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Get idea by id",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            },
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Update idea",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.IdeaInputDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Delete idea",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "boolean",
                        "name": "confirm",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "428": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/favorite": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Toggle favorite",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/status": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Set progress status",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.StatusRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/tags": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tags"
                ],
                "summary": "Add tag",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.TagRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/tags/{tag}": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tags"
                ],
                "summary": "Rename tag",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "tag",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.TagRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "tags"
                ],
                "summary": "Remove tag",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "name": "tag",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/refinements": {
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ideas"
                ],
                "summary": "Answer a refinement prompt",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.RefinementRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/select": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "selection"
                ],
                "summary": "Select idea",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/coaching": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ai"
                ],
                "summary": "Request AI coaching",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CoachingRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "412": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "502": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/ideas/{id}/image": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ai"
                ],
                "summary": "Generate idea image",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Idea ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "404": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "412": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "502": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/selection": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "selection"
                ],
                "summary": "Current selection",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/models.Idea"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "selection"
                ],
                "summary": "Clear selection",
                "responses": {
                    "204": {
                        "description": "OK"
                    }
                }
            }
        },
        "/brainstorm": {
            "post": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ai"
                ],
                "summary": "Brainstorm ideas",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.BrainstormRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.BrainstormResponseDTO"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "412": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "502": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        },
        "/brainstorm/suggestions": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "ai"
                ],
                "summary": "Brainstorm topic suggestions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.Suggestions"
                        }
                    }
                }
            }
        },
        "/credential": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credential"
                ],
                "summary": "Credential status",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.CredentialStatus"
                        }
                    }
                }
            },
            "put": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credential"
                ],
                "summary": "Save user credential",
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CredentialRequestDTO"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.CredentialStatus"
                        }
                    },
                    "400": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            },
            "delete": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "credential"
                ],
                "summary": "Remove user credential",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/services.CredentialStatus"
                        }
                    },
                    "409": {
                        "description": "error",
                        "schema": {
                            "$ref": "#/definitions/dto.ErrorResponseDTO"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorResponseDTO": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "example": "credential_required"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "dto.IdeaListDTO": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Idea"
                    }
                },
                "total": {
                    "type": "integer"
                },
                "has_active_filters": {
                    "type": "boolean"
                },
                "sort": {
                    "type": "string"
                }
            }
        },
        "dto.IdeaInputDTO": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "potentialImpact": {
                    "type": "string"
                },
                "effortLevel": {
                    "type": "string"
                },
                "initialSteps": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "refinementPrompts": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "userRefinements": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "status": {
                    "type": "string"
                },
                "isFavorite": {
                    "type": "boolean"
                }
            }
        },
        "dto.StatusRequestDTO": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                }
            },
            "required": [
                "status"
            ]
        },
        "dto.TagRequestDTO": {
            "type": "object",
            "properties": {
                "tag": {
                    "type": "string"
                }
            },
            "required": [
                "tag"
            ]
        },
        "dto.RefinementRequestDTO": {
            "type": "object",
            "properties": {
                "prompt": {
                    "type": "string"
                },
                "answer": {
                    "type": "string"
                }
            },
            "required": [
                "prompt"
            ]
        },
        "dto.BrainstormRequestDTO": {
            "type": "object",
            "properties": {
                "topic": {
                    "type": "string"
                }
            }
        },
        "dto.BrainstormResponseDTO": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Idea"
                    }
                },
                "notice": {
                    "$ref": "#/definitions/store.Notice"
                }
            }
        },
        "dto.CoachingRequestDTO": {
            "type": "object",
            "properties": {
                "intent": {
                    "type": "string"
                },
                "question": {
                    "type": "string"
                }
            },
            "required": [
                "intent"
            ]
        },
        "dto.CredentialRequestDTO": {
            "type": "object",
            "properties": {
                "api_key": {
                    "type": "string"
                }
            },
            "required": [
                "api_key"
            ]
        },
        "dto.OptionDTO": {
            "type": "object",
            "properties": {
                "value": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                }
            }
        },
        "dto.MetaDTO": {
            "type": "object",
            "properties": {
                "categories": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OptionDTO"
                    }
                },
                "impact_levels": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OptionDTO"
                    }
                },
                "effort_levels": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OptionDTO"
                    }
                },
                "statuses": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OptionDTO"
                    }
                },
                "coaching_intents": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OptionDTO"
                    }
                },
                "sort_options": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.OptionDTO"
                    }
                },
                "default_sort": {
                    "type": "string"
                }
            }
        },
        "models.WebSource": {
            "type": "object",
            "properties": {
                "uri": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                }
            }
        },
        "models.GroundingChunk": {
            "type": "object",
            "properties": {
                "web": {
                    "$ref": "#/definitions/models.WebSource"
                }
            }
        },
        "models.AICoachingSession": {
            "type": "object",
            "properties": {
                "promptType": {
                    "type": "string"
                },
                "promptSent": {
                    "type": "string"
                },
                "response": {
                    "type": "string"
                },
                "timestamp": {
                    "type": "string"
                },
                "groundingMetadata": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.GroundingChunk"
                    }
                }
            }
        },
        "models.Idea": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "potentialImpact": {
                    "type": "string"
                },
                "effortLevel": {
                    "type": "string"
                },
                "initialSteps": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "refinementPrompts": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "userRefinements": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "isCustom": {
                    "type": "boolean"
                },
                "createdAt": {
                    "type": "string"
                },
                "isFavorite": {
                    "type": "boolean"
                },
                "status": {
                    "type": "string"
                },
                "tags": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "aiCoachingSessions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.AICoachingSession"
                    }
                },
                "imageUrl": {
                    "type": "string"
                },
                "imagePrompt": {
                    "type": "string"
                }
            }
        },
        "store.Notice": {
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "at": {
                    "type": "string"
                }
            }
        },
        "dto.StatusDTO": {
            "type": "object",
            "properties": {
                "loading": {
                    "type": "boolean"
                },
                "in_flight": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "notice": {
                    "$ref": "#/definitions/store.Notice"
                },
                "ai_quota_remaining": {
                    "type": "integer",
                    "example": 42
                }
            }
        },
        "feeder.RssFeedItem": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "link": {
                    "type": "string"
                },
                "published_at": {
                    "type": "string"
                }
            }
        },
        "services.Suggestions": {
            "type": "object",
            "properties": {
                "pick": {
                    "type": "string"
                },
                "examples": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "headlines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/feeder.RssFeedItem"
                    }
                }
            }
        },
        "services.CredentialStatus": {
            "type": "object",
            "properties": {
                "source": {
                    "type": "string"
                },
                "present": {
                    "type": "boolean"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "FIRE Tribe Base API",
	Description:      "Idea management for financial independence: brainstorm, coach and track FIRE ideas with Gemini.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
