package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphCommandSingleTask(t *testing.T) {
	setupProject(t, basicTaskfile)

	cmd := &GraphCommand{}
	output := captureStdout(t, func() {
		assert.Equal(t, ExitSuccess, cmd.Run([]string{"both"}))
	})

	assert.Contains(t, output, "greet")
	assert.Contains(t, output, "fail")
	assert.Contains(t, output, "both")
}

func TestGraphCommandAllTasks(t *testing.T) {
	setupProject(t, basicTaskfile)

	cmd := &GraphCommand{}
	output := captureStdout(t, func() {
		assert.Equal(t, ExitSuccess, cmd.Run(nil))
	})

	// One line per declared task
	assert.Contains(t, output, "greet\n")
	assert.Contains(t, output, "with-arg\n")
}

func TestGraphCommandUnknownTask(t *testing.T) {
	setupProject(t, basicTaskfile)

	cmd := &GraphCommand{}
	assert.Equal(t, ExitUsage, cmd.Run([]string{"nope"}))
}

func TestGraphCommandCyclicTaskfile(t *testing.T) {
	setupProject(t, `tasks:
  - name: a
    deps: [b]
    steps:
      - run: "true"
  - name: b
    deps: [a]
    steps:
      - run: "true"
`)

	cmd := &GraphCommand{}
	assert.Equal(t, ExitUsage, cmd.Run(nil))
}
