// Package prompts holds the generation instructions for each enriched
// posting section. Keeping them in one place makes tuning the output style
// a data change rather than a code change.
package prompts

import "fmt"

// Section identifiers, in generation order. Every enriched posting carries
// exactly these five sections.
const (
	TopicJobDescription    = "job_description"
	TopicKeyResponsibility = "key_responsibility"
	TopicAboutCompany      = "about_company"
	TopicSelectionProcess  = "selection_process"
	TopicQualification     = "qualification"
)

// Topics lists the sections in the fixed order they are generated.
var Topics = []string{
	TopicJobDescription,
	TopicKeyResponsibility,
	TopicAboutCompany,
	TopicSelectionProcess,
	TopicQualification,
}

// instructions maps each topic to its system message.
var instructions = map[string]string{
	TopicJobDescription: "You are an AI Agent specializing in writing comprehensive job descriptions for job portals. " +
		"Generate a detailed, thorough job description based on the provided information up to 200 words long. " +
		"If some details are missing, supplement extensively with relevant industry-standard information. " +
		"Structure your response with multiple clear headings and well-organized sections. " +
		"Use professional, objective tone and third-person voice. Provide specific examples and context where relevant. " +
		"Format your response in Markdown with proper headings, bullet points, and detailed explanations. " +
		"Do not include any direct calls-to-action or first-person phrasing. Make the content rich and informative.",

	TopicKeyResponsibility: "You are an AI Agent specializing in creating detailed key responsibilities sections for job portals. " +
		"Generate a comprehensive list of duties and responsibilities that is up to 200 words long. " +
		"Extract and expand upon the key duties based on the provided text. " +
		"If limited information is provided, generate extensive typical tasks for the role based on industry standards. " +
		"Structure your response with multiple clear headings and well-organized sections. " +
		"For each responsibility, provide detailed explanations, context, and expected outcomes. " +
		"Use objective, third-person voice with specific examples and measurable objectives where possible. " +
		"Format your response in Markdown with detailed bullet points and explanations.",

	TopicAboutCompany: "You are an AI Agent crafting comprehensive 'About the Company' sections for job portals. " +
		"Create a detailed company profile that is up to 200 words long. " +
		"Use the provided information and expand with relevant industry knowledge and best practices. " +
		"If minimal details are supplied, create a comprehensive company profile using general best practices. " +
		"Structure your response with multiple clear headings and well-organized sections. " +
		"Write in third-person, objective tone with rich details about mission, culture, market position, and growth trajectory. " +
		"Format your response in Markdown with appropriate headings and comprehensive paragraphs.",

	TopicSelectionProcess: "You are an AI Agent creating detailed selection processes for job portals. " +
		"Generate a comprehensive, multi-stage hiring workflow that is up to 200 words long. " +
		"Outline a realistic and thorough selection process typical for the role and industry. " +
		"Structure your response with multiple clear headings and well-organized sections. " +
		"For each stage, provide detailed explanations of: what happens, who's involved, duration, evaluation criteria, and candidate expectations. " +
		"Use third-person, objective voice with specific timelines and processes. " +
		"If no specifics are given, describe comprehensive best-practice steps with industry-standard procedures. " +
		"Format your response in Markdown with numbered steps, detailed explanations, and timelines.",

	TopicQualification: "You are an AI Agent creating comprehensive qualifications sections for job portals. " +
		"Generate a detailed breakdown of qualifications and requirements that is up to 200 words long. " +
		"Extract and extensively elaborate on required skills and criteria from the provided text. " +
		"If minimal qualifications are listed, generate comprehensive typical requirements for the role. " +
		"Structure your response with multiple clear headings and well-organized sections. " +
		"For each qualification, provide detailed explanations of why it's important, how it applies to the role, and what level of proficiency is expected. " +
		"Maintain a neutral, third-person tone with specific examples and contexts. " +
		"Format your response in Markdown with clear sections and comprehensive explanations.",
}

// Instruction returns the system message for a topic. Unknown topics fall
// back to the job description instruction.
func Instruction(topic string) string {
	if inst, ok := instructions[topic]; ok {
		return inst
	}
	return instructions[TopicJobDescription]
}

// Details carries the posting fields the user prompt is built from. Missing
// fields degrade to placeholder text instead of failing the generation.
type Details struct {
	CompanyName   string
	JobRole       string
	Description   string
	Qualification string
}

// BuildPrompt constructs the topic-specific user message.
func BuildPrompt(topic string, d Details) string {
	baseInfo := fmt.Sprintf("Company Name: %s\nJob Title: %s\n", d.CompanyName, d.JobRole)

	switch topic {
	case TopicJobDescription:
		return fmt.Sprintf("%s\nJob Description Information:\n%s\n\nTask: Create a complete job description based on the above information, using industry-standard details where needed.",
			baseInfo, orFallback(d.Description, "No detailed description provided"))

	case TopicKeyResponsibility:
		return fmt.Sprintf("%s\nJob Description Information:\n%s\n\nTask: Extract or generate key responsibilities for this position. Group similar tasks under subheadings.",
			baseInfo, orFallback(d.Description, "No responsibilities listed"))

	case TopicAboutCompany:
		return fmt.Sprintf("%s\n\nTask: Create an 'About the Company' section. Use provided info or general company profile conventions if missing.",
			baseInfo)

	case TopicSelectionProcess:
		return fmt.Sprintf("%s\nJob Description Information:\n%s\n\nTask: Outline a multi-stage selection process appropriate for this role and industry.",
			baseInfo, orFallback(d.Description, "No selection details provided"))

	case TopicQualification:
		return fmt.Sprintf("%sQualifications & Requirements: %s\n\nTask: List and categorize necessary qualifications. Use typical criteria if none supplied.",
			baseInfo, orFallback(d.Qualification, "Not specified"))

	default:
		return fmt.Sprintf("%s\nJob Description Information:\n%s\n\nTask: Process the above information for the topic: %s",
			baseInfo, d.Description, topic)
	}
}

func orFallback(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
