package agent

import (
	"strings"

	"github.com/xkilldash9x/webpilot/internal/dsl"
)

// dslPrompt introduces the text action vocabulary. The user instruction is
// appended directly after it in the first user entry.
var dslPrompt = `You are a GUI agent. You have access to a browser. You are given a task and your action history, with screenshots. You need to perform the next action to complete the task.

## Output Format
` + "```" + `
Thought: ...
Action: ...
` + "```" + `

## Action Space

` + strings.Join(dslExamples, "\n") + `

## Note
- Summarize your next action (with its target element) in one sentence in the ` + "`Thought`" + ` part.
- Coordinates are in a 0-1000 space over the visible page, independent of its pixel size.
- Output exactly one Action line per reply.

## User Instruction
`

var dslExamples = []string{
	dsl.NameClick + "(start_box='<|box_start|>(x1,y1)<|box_end|>')",
	dsl.NameLeftDouble + "(start_box='<|box_start|>(x1,y1)<|box_end|>')",
	dsl.NameRightSingle + "(start_box='<|box_start|>(x1,y1)<|box_end|>')",
	dsl.NameDrag + "(start_box='<|box_start|>(x1,y1)<|box_end|>', end_box='<|box_start|>(x3,y3)<|box_end|>')",
	dsl.NameHotkey + "(key='')",
	dsl.NameType + "(content='') #If you want to submit your input, use \"\\n\" at the end of `content`.",
	dsl.NameScroll + "(start_box='<|box_start|>(x1,y1)<|box_end|>', direction='down or up or right or left')",
	dsl.NameWait + "() #Sleep for 5s and take a screenshot to check for any changes.",
	dsl.NameFinished + "(content='')",
	dsl.NameCallUser + "() # Submit the task and call the user when the task is unsolvable, or when you need the user's help.",
}

// DSLPrompt returns the text-vocabulary prompt followed by the instruction.
func DSLPrompt(instruction string) string {
	return dslPrompt + instruction
}

// ToolSystemPrompt is the system prompt of the structured tool loop.
const ToolSystemPrompt = `You are operating a web browser through the computer, set_url and previous_page tools.
* Take a screenshot before acting if you do not know the current state of the page.
* Coordinates are pixel positions in the viewport advertised by the computer tool.
* When the task is complete, reply with a short summary and no tool call.`
