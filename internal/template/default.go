package template

// DefaultTemplate is the embedded generation prompt.
// It uses {{variable}} placeholders for the wizard fields.
const DefaultTemplate = `You are generating a CLAUDE.md file for a developer using Claude Code with a persona-based system.

CONTEXT: CLAUDE.md files are "persistent prompts" that provide project-specific context to Claude Code, reducing repetitive explanations and ensuring consistent AI behavior. This implementation uses a sophisticated persona system where Claude can embody different expert roles based on context.

RESEARCH FINDINGS:
- Files should be 25-250 lines (token budget optimization)
- Use concise, actionable bullet points
- Include specific versions and tools when available
- Focus on what Claude needs to know, not documentation
- Persona systems enable sophisticated multi-agent workflows
- Clear activation rules help Claude switch between expert roles

USER CONFIGURATION:

UNIVERSAL PRINCIPLES:
{{universal_principles}}

EXPERT PERSONAS:
{{personas}}

PROJECT CONTEXT:
{{project_context}}

ACTIVATION RULES:
{{activation_rules}}

Generate a CLAUDE.md file that:
1. Follows proven structure with persona system integration
2. Is concise and actionable (25-250 lines)
3. Includes clear persona definitions and activation rules
4. Incorporates universal principles that apply to all personas
5. Provides project-specific context for all personas
6. Uses specific, actionable guidance rather than generic advice

IMPORTANT: Return ONLY the raw CLAUDE.md file content - no markdown code blocks, no explanatory text, no "Here's your file" - just the actual file content that can be directly copied and pasted.

Structure the file with:
- Project overview and universal principles
- Persona definitions with clear roles and expertise
- Activation rules and context switching
- Project-specific technical details
- Clear restrictions and guidelines

Make it professional, actionable, and optimized for Claude Code usage.`

// SystemPrompt is sent as the system message for CLAUDE.md generation.
const SystemPrompt = `You are an expert at creating CLAUDE.md files for Claude Code users. You understand persona-based systems and how to structure effective project memory files that enable sophisticated AI assistance workflows.

Create a well-structured, actionable CLAUDE.md file that will serve as persistent context for Claude Code sessions. Focus on clarity, specificity, and practical guidance.`
