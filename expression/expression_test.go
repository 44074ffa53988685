package expression_test

import (
	"testing"

	"github.com/SteakFisher/arazzo-writer/expression"
	"github.com/SteakFisher/arazzo-writer/jsonpointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression_Validate_Success(t *testing.T) {
	t.Parallel()

	tests := []string{
		"$url",
		"{$url}",
		"$method",
		"$statusCode",
		"$request.body",
		"$request.body#/user/id",
		"$response.body#/items/0",
		"{$response.body#/id}",
		"$request.header.X-Api-Key",
		"$response.header.Content-Type",
		"$request.query.limit",
		"$request.path.petId",
		"$inputs.username",
		"$inputs.user#/name",
		"$outputs.token",
		"$steps.login.outputs.token",
		"$steps.find-pets.outputs.pets#/0/id",
		"$workflows.login.outputs.token",
		"$workflows.login.inputs.username",
		"$sourceDescriptions.petStore.url",
		"$sourceDescriptions.petStore.findPetsByStatus",
		"{$sourceDescriptions.petStore.url}#/paths/~1pets/get",
		"$components.parameters.apiKey",
		"$components.successActions.done",
		"$components.failureActions.retry-later",
		"$components.inputs.credentials",
	}

	for _, e := range tests {
		t.Run(e, func(t *testing.T) {
			t.Parallel()
			require.NoError(t, expression.Expression(e).Validate())
		})
	}
}

func TestExpression_Validate_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expression string
		wantErr    string
	}{
		{expression: "url", wantErr: "must begin with $"},
		{expression: "$unknown.value", wantErr: "must begin with one of"},
		{expression: "$url.extra", wantErr: "extra characters after $url"},
		{expression: "$statusCode == 200", wantErr: "must begin with $"},
		{expression: "$request", wantErr: "expected one of [header, query, path, body]"},
		{expression: "$response.cookie.x", wantErr: "expected one of [header, query, path, body]"},
		{expression: "$request.body.user", wantErr: "only json pointers are allowed"},
		{expression: "$request.header", wantErr: "expected token"},
		{expression: "$request.header.Bad Header", wantErr: "must begin with $"},
		{expression: "$request.header.X(1)", wantErr: "must be a valid token"},
		{expression: "$request.query", wantErr: "expected name"},
		{expression: "$inputs", wantErr: "expected name after $inputs"},
		{expression: "$steps.login", wantErr: "expected $steps.<stepId>.outputs.<name>"},
		{expression: "$steps.login.token", wantErr: "expected $steps.<stepId>.outputs.<name>"},
		{expression: "$workflows.login.steps.x", wantErr: "expected $workflows.<workflowId>.(inputs|outputs).<name>"},
		{expression: "$sourceDescriptions.petStore", wantErr: "expected $sourceDescriptions.<name>.<reference>"},
		{expression: "$sourceDescriptions.petStore.getPet#/x", wantErr: "json pointers are not allowed"},
		{expression: "$components.schemas.Pet", wantErr: "expected one of [parameters, successActions, failureActions, inputs]"},
		{expression: "$components.parameters", wantErr: "expected $components.parameters.<name>"},
		{expression: "$response.body#bad", wantErr: "jsonpointer must start with /"},
		{expression: "$method#/x", wantErr: "json pointers are not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			t.Parallel()
			err := expression.Expression(tt.expression).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExpression_GetParts(t *testing.T) {
	t.Parallel()

	typ, reference, parts, jp := expression.Expression("{$sourceDescriptions.petStore.url}#/paths/~1pets/get").GetParts()
	assert.Equal(t, expression.ExpressionTypeSourceDescriptions, typ)
	assert.Equal(t, "petStore", reference)
	assert.Equal(t, []string{"url"}, parts)
	assert.Equal(t, jsonpointer.JSONPointer("/paths/~1pets/get"), jp)

	typ, reference, parts, jp = expression.Expression("$response.header.X-Trace#1").GetParts()
	assert.Equal(t, expression.ExpressionTypeResponse, typ)
	assert.Equal(t, "header", reference)
	assert.Equal(t, []string{"X-Trace#1"}, parts)
	assert.Empty(t, jp)

	assert.Equal(t, expression.ExpressionTypeSteps, expression.Expression("$steps.a.outputs.b").GetType())
	assert.Equal(t, jsonpointer.JSONPointer("/id"), expression.Expression("$response.body#/id").GetJSONPointer())
}

func TestExpression_IsExpression(t *testing.T) {
	t.Parallel()

	assert.True(t, expression.Expression("$url").IsExpression())
	assert.True(t, expression.Expression("{$inputs.id}").IsExpression())
	assert.True(t, expression.Expression("{$sourceDescriptions.api.url}#/paths/~1a/get").IsExpression())
	assert.False(t, expression.Expression("findPets").IsExpression())
	assert.False(t, expression.Expression("Bearer {$steps.login.outputs.token}").IsExpression())
	assert.False(t, expression.Expression("$statusCode == 200").IsExpression())
	assert.False(t, expression.Expression("").IsExpression())
}

func TestExtractExpressions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  []expression.Expression
	}{
		{input: "no expressions here", want: nil},
		{input: "$statusCode == 200", want: []expression.Expression{"$statusCode"}},
		{input: "Bearer {$steps.login.outputs.token}", want: []expression.Expression{"{$steps.login.outputs.token}"}},
		{input: "{$inputs.a}-{$inputs.b}", want: []expression.Expression{"{$inputs.a}", "{$inputs.b}"}},
		{input: "costs $5", want: nil},
		{input: "{$unterminated", want: nil},
		{input: "{$sourceDescriptions.api.url}#/paths/~1a/get tail", want: []expression.Expression{"{$sourceDescriptions.api.url}#/paths/~1a/get"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, expression.ExtractExpressions(tt.input))
		})
	}
}

func TestValidateEmbedded(t *testing.T) {
	t.Parallel()

	assert.Empty(t, expression.ValidateEmbedded("Bearer {$steps.login.outputs.token}"))
	assert.Empty(t, expression.ValidateEmbedded("$not-braced is ignored"))

	errs := expression.ValidateEmbedded("id={$request.nope}")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "expected one of [header, query, path, body]")
}
