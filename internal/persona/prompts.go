package persona

import "fmt"

const generationSystemPrompt = `You are an expert at creating sophisticated multi-agent persona systems for CLAUDE.md files.

Your task is to generate advanced persona systems that enable real subagent delegation through Claude Code's Task Tool. These are not simple instruction sets, but technical frameworks for multi-agent coordination.

Key capabilities to include:
- Multi-agent workflow coordination
- Subagent delegation through Claude Code's Task Tool (up to 10 parallel agents)
- Communication protocols (file-based, Git-based, MCP servers)
- Workflow patterns from proven implementations

Follow these research-based patterns:
- BMAD Method (9 specialized personas with adaptive formality)
- Agent Control Plane (4 mandatory personas with strict transitions)
- SuperClaude Framework (command-flag based activation)

Generate a complete CLAUDE.md persona system that includes:
1. Persona selection mechanism
2. Individual persona definitions with behavioral rules
3. Delegation rules and subagent coordination
4. Communication protocols
5. Quality gates and workflow patterns

The output should be a complete, ready-to-use CLAUDE.md file section.`

const enhancementSystemPrompt = `You are an expert at enhancing and refining persona systems for CLAUDE.md files.

Your task is to improve existing persona definitions while maintaining their core functionality and adding sophisticated multi-agent capabilities.

Focus on:
- Improving delegation rules and subagent coordination
- Adding missing workflow patterns
- Enhancing communication protocols
- Strengthening quality gates
- Ensuring compatibility with Claude Code's Task Tool

Maintain the existing persona structure while making targeted improvements.`

const validationSystemPrompt = `You are an expert at validating persona systems for CLAUDE.md files.

Your task is to analyze persona systems and identify:
1. Missing critical components
2. Ineffective delegation patterns
3. Poor communication protocols
4. Unclear quality gates
5. Potential coordination issues

Provide specific, actionable feedback for improvement.

Respond in JSON format:
{
  "is_valid": boolean,
  "issues": ["list of specific issues found"],
  "suggestions": ["list of specific improvement suggestions"]
}`

func generationPrompt(projectContext, requirements string) string {
	if requirements != "" {
		requirements = "- " + requirements
	}
	return fmt.Sprintf(`Project Context:
%s

Persona Requirements:
%s

Generate a sophisticated multi-agent persona system for this project that enables effective subagent delegation and coordination.`, projectContext, requirements)
}

func enhancementPrompt(existing, request string) string {
	return fmt.Sprintf(`Existing Persona System:
%s

Enhancement Request:
%s

Enhance this persona system with the requested improvements while maintaining its core functionality.`, existing, request)
}

func validationPrompt(system string) string {
	return fmt.Sprintf(`Persona System to Validate:
%s

Analyze this persona system and provide validation feedback.`, system)
}
