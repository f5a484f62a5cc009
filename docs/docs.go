// Package docs registers the OpenAPI document of the HTTP API with swag.
// It is served by the /swagger/ route; keep it in line with the godoc
// annotations on the handlers.
package docs

import "github.com/swaggo/swag"

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
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Проверка доступности сервиса и базы данных",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "База данных недоступна", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/clubs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clubs"],
                "summary": "Создать клуб",
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.CreateClubInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Club"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Клуб с таким именем уже есть", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["competitions"],
                "summary": "Создать соревнование",
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.CreateCompetitionInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Competition"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions/{competitionID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["competitions"],
                "summary": "Получить соревнование",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Competition"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions/{competitionID}/participants": {
            "get": {
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Список участников соревнования",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"participants": {"type": "array", "items": {"$ref": "#/definitions/models.Participant"}}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["participants"],
                "summary": "Зарегистрировать клуб в соревновании",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/services.RegisterParticipantInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Participant"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Клуб или посев уже заняты, либо сетка уже построена", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions/{competitionID}/bracket": {
            "get": {
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Сетка или календарь по раундам",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.BracketView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Построить сетку на выбывание",
                "description": "Без списка participants сетка строится из подтвержденных регистраций.",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/handlers.buildBracketRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.BracketGraph"}},
                    "409": {"description": "Сетка уже построена", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "422": {"description": "Недопустимый состав участников", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions/{competitionID}/fixtures": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["brackets"],
                "summary": "Составить календарь круговой лиги",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "properties": {"matches": {"type": "array", "items": {"$ref": "#/definitions/models.Match"}}}}},
                    "409": {"description": "Календарь уже составлен", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions/{competitionID}/standings": {
            "get": {
                "produces": ["application/json"],
                "tags": ["standings"],
                "summary": "Турнирная таблица лиги",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"standings": {"type": "array", "items": {"$ref": "#/definitions/models.StandingsRow"}}}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "422": {"description": "Соревнование не является лигой", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/competitions/{competitionID}/champion": {
            "get": {
                "produces": ["application/json"],
                "tags": ["competitions"],
                "summary": "Победитель соревнования",
                "parameters": [
                    {"type": "integer", "description": "Competition ID", "name": "competitionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "properties": {"champion": {"$ref": "#/definitions/models.Club"}}}},
                    "404": {"description": "Победитель еще не определен", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        },
        "/matches/{matchID}/result": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Записать или исправить результат матча",
                "parameters": [
                    {"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true},
                    {"in": "body", "name": "result", "required": true, "schema": {"$ref": "#/definitions/services.MatchResult"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ResultUpdate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Исправление затрагивает сыгранные матчи", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "422": {"description": "Недопустимый счет или матч не готов", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Сбросить результат матча",
                "parameters": [
                    {"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true},
                    {"type": "boolean", "description": "Сбросить и сыгранные матчи ниже по сетке", "name": "cascade", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ResultUpdate"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.buildBracketRequest": {
            "type": "object",
            "properties": {
                "participants": {"type": "array", "items": {"$ref": "#/definitions/brackets.SeededParticipant"}},
                "consolation_match": {"type": "boolean"}
            }
        },
        "brackets.SeededParticipant": {
            "type": "object",
            "properties": {"club_id": {"type": "integer"}, "seed": {"type": "integer"}}
        },
        "services.CreateClubInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "short_name": {"type": "string"},
                "city": {"type": "string"},
                "logo_key": {"type": "string"}
            }
        },
        "services.CreateCompetitionInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "format": {"type": "string", "enum": ["single_elimination", "round_robin"]},
                "max_participants": {"type": "integer"},
                "settings": {"$ref": "#/definitions/models.RoundRobinSettings"}
            }
        },
        "services.RegisterParticipantInput": {
            "type": "object",
            "properties": {
                "club_id": {"type": "integer"},
                "seed_number": {"type": "integer"},
                "confirmed": {"type": "boolean"}
            }
        },
        "services.MatchResult": {
            "type": "object",
            "properties": {
                "home_score": {"type": "integer"},
                "away_score": {"type": "integer"},
                "shootout_winner_club_id": {"type": "integer"}
            }
        },
        "services.ResultUpdate": {
            "type": "object",
            "properties": {
                "match": {"$ref": "#/definitions/models.Match"},
                "affected": {"type": "array", "items": {"$ref": "#/definitions/models.Match"}},
                "competition": {"$ref": "#/definitions/models.Competition"},
                "champion_decided": {"type": "boolean"},
                "actor_user_id": {"type": "integer"}
            }
        },
        "services.BracketView": {
            "type": "object",
            "properties": {
                "competition": {"$ref": "#/definitions/models.Competition"},
                "rounds": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "round_number": {"type": "integer"},
                            "name": {"type": "string"},
                            "matches": {"type": "array", "items": {"$ref": "#/definitions/models.Match"}}
                        }
                    }
                },
                "consolation": {"$ref": "#/definitions/models.Match"},
                "clubs": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.Club"}}
            }
        },
        "models.RoundRobinSettings": {
            "type": "object",
            "properties": {
                "number_of_rounds": {"type": "integer"},
                "points_for_win": {"type": "integer"},
                "points_for_draw": {"type": "integer"},
                "points_for_loss": {"type": "integer"}
            }
        },
        "models.Club": {"type": "object", "additionalProperties": true},
        "models.Competition": {"type": "object", "additionalProperties": true},
        "models.Participant": {"type": "object", "additionalProperties": true},
        "models.Match": {"type": "object", "additionalProperties": true},
        "models.BracketGraph": {"type": "object", "additionalProperties": true},
        "models.StandingsRow": {"type": "object", "additionalProperties": true}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Bearer-токен организатора: \"Bearer <jwt>\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Competition Engine API",
	Description:      "Сетки на выбывание, круговые лиги, результаты матчей и турнирные таблицы.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
