package render_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, data []byte) *arazzo.Arazzo {
	t.Helper()

	a, _, err := arazzo.Unmarshal(context.Background(), bytes.NewReader(data), arazzo.WithSkipValidation())
	require.NoError(t, err)
	return a
}

func loadFile(t *testing.T, path string) *arazzo.Arazzo {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return load(t, data)
}

const branchingDoc = `arazzo: 1.0.1
info:
  title: Checkout
  version: 1.0.0
sourceDescriptions:
  - name: shop
    url: ./shop.yaml
workflows:
  - workflowId: login
    steps:
      - stepId: auth
        operationId: login
  - workflowId: checkout
    dependsOn: [login]
    steps:
      - stepId: cart
        operationId: getCart
        onSuccess:
          - name: emptyCart
            type: goto
            stepId: done
        onFailure:
          - name: reauth
            type: goto
            workflowId: login
      - stepId: pay
        workflowId: login
      - stepId: done
        operationId: confirm
`

func TestMermaid_PetAdoption(t *testing.T) {
	t.Parallel()

	a := loadFile(t, "../arazzo/testdata/pet-adoption.arazzo.yaml")

	want := `flowchart TD
  subgraph adoptPet["adoptPet"]
    adoptPet__findPets["findPets<br/>listPets"]
    adoptPet__adopt["adopt<br/>{$sourceDescriptions.petstore.url}#/paths/~1pets~1{petId}~1adopt/post"]
    adoptPet__findPets --> adoptPet__adopt
  end
  adoptPet__findPets -. "retryLater" .-> adoptPet__findPets
`
	assert.Equal(t, want, render.Mermaid(a))
}

func TestMermaid_Branching(t *testing.T) {
	t.Parallel()

	out := render.Mermaid(load(t, []byte(branchingDoc)))

	for _, line := range []string{
		`  login -. dependsOn .-> checkout`,
		`  checkout__cart -- "emptyCart" --> checkout__done`,
		`  checkout__cart -. "reauth" .-> login`,
		`  checkout__pay ==> login`,
		`    checkout__cart --> checkout__pay`,
		`    checkout__pay --> checkout__done`,
	} {
		assert.Contains(t, out, line+"\n")
	}
}

func TestMarkdown_PetAdoption(t *testing.T) {
	t.Parallel()

	out := render.Markdown(loadFile(t, "../arazzo/testdata/pet-adoption.arazzo.yaml"))

	assert.True(t, strings.HasPrefix(out, "# Pet adoption\n\nVersion 1.0.0, Arazzo 1.0.1\n\nFind an available pet and adopt it\n"))
	for _, line := range []string{
		"| petstore | openapi | https://petstore.example.com/openapi.yaml |",
		"### adoptPet",
		"| 1 | findPets | `listPets` | `$statusCode == 200`<br>jsonpath `$.pets[?@.status == 'available']` on `$response.body` | petId |",
		"- adoptionId: `$steps.adopt.outputs.adoptionId`",
		"- `findPets` on failure: retryLater (retry), up to 3 times",
		"- `adopt` on success: done (end)",
	} {
		assert.Contains(t, out, line)
	}
}

func TestRender_Error(t *testing.T) {
	t.Parallel()

	_, err := render.Render(load(t, []byte(branchingDoc)), "svg")
	assert.EqualError(t, err, `unsupported render format "svg", expected markdown or mermaid`)
}
