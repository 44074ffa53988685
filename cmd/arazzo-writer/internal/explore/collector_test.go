package explore

import (
	"os"
	"strings"
	"testing"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestDocument(t *testing.T, path string) *arazzo.Arazzo {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, validationErrs, err := arazzo.Unmarshal(t.Context(), f)
	require.NoError(t, err)
	require.Empty(t, validationErrs)
	return doc
}

func TestCollectSteps_Success(t *testing.T) {
	t.Parallel()

	doc := loadTestDocument(t, "../../../../arazzo/testdata/pet-adoption.arazzo.yaml")

	steps, err := CollectSteps(t.Context(), doc)
	require.NoError(t, err, "should collect steps without error")
	require.Len(t, steps, 2, "should collect 2 steps")

	find := steps[0]
	assert.Equal(t, "adoptPet", find.WorkflowID)
	assert.Equal(t, "Adopt the first available pet", find.WorkflowSummary)
	assert.Equal(t, "findPets", find.StepID)
	assert.Equal(t, 1, find.Position)
	assert.Equal(t, TargetKindOperationID, find.Kind)
	assert.Equal(t, "listPets", find.Target)
	assert.True(t, find.Folded, "should start folded")
	assert.Equal(t, []string{
		"status (query): available",
		"X-Api-Key (header): $inputs.apiKey via $components.parameters.apiKey",
	}, find.Parameters)
	assert.Equal(t, []string{
		"$statusCode == 200",
		"[jsonpath] $.pets[?@.status == 'available'] on $response.body",
	}, find.SuccessCriteria)
	assert.Equal(t, []string{"retryLater (retry) when 1 criteria hold, after 1.5s, up to 3 times"}, find.OnFailure)
	assert.Empty(t, find.OnSuccess)
	assert.Equal(t, []string{"petId: $response.body#/pets/0/id"}, find.Outputs)

	adopt := steps[1]
	assert.Equal(t, "adopt", adopt.StepID)
	assert.Equal(t, 2, adopt.Position)
	assert.Equal(t, TargetKindOperationPath, adopt.Kind)
	assert.Equal(t, "{$sourceDescriptions.petstore.url}#/paths/~1pets~1{petId}~1adopt/post", adopt.Target)
	assert.Equal(t, []string{"done (end)"}, adopt.OnSuccess)
	assert.Equal(t, "[regex] ^/adoptions/ on $response.header.Location", adopt.SuccessCriteria[1])
}

func TestCollectSteps_WorkflowCallsAndPositions(t *testing.T) {
	t.Parallel()

	src := `arazzo: 1.0.1
info:
  title: Chained
  version: 1.0.0
sourceDescriptions:
  - name: api
    url: ./openapi.yaml
    type: openapi
workflows:
  - workflowId: login
    steps:
      - stepId: token
        operationId: createToken
        onFailure:
          - name: again
            type: goto
            stepId: token
  - workflowId: order
    steps:
      - stepId: auth
        workflowId: login
        parameters:
          - name: body
            value:
              user: alice
      - stepId: place
        description: Places an order for the authenticated user and returns the order id to the caller
        operationId: placeOrder
`
	doc, _, err := arazzo.Unmarshal(t.Context(), strings.NewReader(src))
	require.NoError(t, err)

	steps, err := CollectSteps(t.Context(), doc)
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, []string{"again (goto) → step token"}, steps[0].OnFailure)

	assert.Equal(t, "order", steps[1].WorkflowID)
	assert.Equal(t, 1, steps[1].Position, "position should restart for each workflow")
	assert.Equal(t, TargetKindWorkflowID, steps[1].Kind)
	assert.Equal(t, []string{"body: {user: alice}"}, steps[1].Parameters)

	assert.Equal(t, 2, steps[2].Position)
	assert.Equal(t, "Places an order for the authenticated user and returns th...", steps[2].GetDisplaySummary())
	assert.True(t, steps[2].HasDetails())
}

func TestCollectSteps_EmptyDocument(t *testing.T) {
	t.Parallel()

	steps, err := CollectSteps(t.Context(), &arazzo.Arazzo{})
	require.NoError(t, err)
	assert.Empty(t, steps)
}
