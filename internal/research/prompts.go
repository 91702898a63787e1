package research

import "fmt"

// The instruction text below is configuration content: it primes each phase
// but carries no algorithmic logic.

const defaultSystemInstruction = `You are a research assistant working through a multi-phase workflow.
Each phase gives you a focused instruction and the accumulated notes of
earlier phases. Work only on the current phase. When a phase asks for a
tagged block, emit exactly one block with that tag and keep everything else
as free-form reasoning.`

const finalSystemInstruction = `You are a research assistant writing the final answer of a completed
research workflow. Everything before this message is internal working
material: clarifications, a research plan, and research notes. Write one
self-contained, well-structured answer for the user. Cite the sources you
relied on inline where it helps. Do not mention the workflow, its phases,
or the notes themselves.`

const clarifyInstruction = `First phase: clarify the request. Identify ambiguous terms, implicit
assumptions, and the precise questions that need answering. Do not research
anything yet. Summarize your reading of the request in a <` + tagClarification + `>
block.`

const planInstruction = `Second phase: plan the research. Using the clarification notes, lay out
the concrete questions to investigate, in priority order, and what a good
answer to each would look like. Put the plan in a <` + tagPlan + `> block.`

const researchInstruction = `Research phase: work through the open items of the plan. Use web search
and URL context to ground every claim; prefer primary sources. Record what
you learned, which sources support it, and what remains open in a
<` + tagResearchNotes + `> block.`

const controlInstruction = `Control phase: judge the state of the research. Weigh what the notes have
settled against what the plan still leaves open, then call ` + decisionCallName + `
with action "research" if another cycle would materially improve the final
answer, or "final" if the answer can be written now. Use the notes argument
to say what the next cycle should focus on, or why the research is done.`

const finalInstruction = `Write the final answer to the original request, drawing on the notes
below. This is the only output the user will see.`

func clarifyPrompt(message string) string {
	return fmt.Sprintf("%s\n\nUser request:\n%s", clarifyInstruction, message)
}

func planPrompt(message, context string) string {
	return fmt.Sprintf("%s\n\nUser request:\n%s\n\nNotes so far:\n%s", planInstruction, message, context)
}

func researchPrompt(cycle int, context, groundingBrief string) string {
	p := fmt.Sprintf("%s\n\nResearch cycle %d.\n\nNotes so far:\n%s", researchInstruction, cycle, context)
	if groundingBrief != "" {
		p += "\n\n" + groundingBrief
	}
	return p
}

func controlPrompt(cycle, maxCycles int) string {
	return fmt.Sprintf("%s\n\nThis was research cycle %d of at most %d.", controlInstruction, cycle, maxCycles)
}

func finalPrompt(message, context string) string {
	return fmt.Sprintf("%s\n\nUser request:\n%s\n\nNotes:\n%s", finalInstruction, message, context)
}
