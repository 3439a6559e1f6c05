package assistant

import (
	"regexp"
	"strings"
)

// ScanResult is the verdict on one visitor message.
type ScanResult struct {
	Blocked bool
	// Score runs from 0 (clean) to 1 (certain injection attempt).
	Score     float64
	Reasons   []string
	Sanitized string
}

type guardPattern struct {
	re     *regexp.Regexp
	reason string
	weight float64
}

const (
	blockScore = 0.7
	// sanitizeScore marks messages that pass but get injection markers stripped.
	sanitizeScore = 0.3
)

var inputPatterns = []guardPattern{
	{regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+)?(previous|prior|above|earlier|your)\s+(instructions?|rules?|prompts?|guidelines?)`), "injection:override_instructions", 0.9},
	{regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|my)\s+`), "injection:role_reassignment", 0.7},
	{regexp.MustCompile(`(?i)new\s+role\s*:|new\s+instructions?\s*:|system\s*prompt\s*:`), "injection:new_role", 0.9},
	{regexp.MustCompile(`(?i)(pretend|imagine|assume)\s+(that\s+)?(you\s+)?(have|are)\s+no\s+(rules?|restrictions?|limits?|guidelines?)`), "injection:pretend_no_rules", 0.9},
	{regexp.MustCompile(`(?i)jailbreak|DAN\s*mode|developer\s*mode|god\s*mode`), "injection:jailbreak", 0.9},
	{regexp.MustCompile(`(?i)(reveal|show|print|repeat|tell\s+me)\s+(me\s+)?(your\s+)?(system\s+prompt|instructions|hidden\s+prompt|initial\s+prompt)`), "exfiltration:system_prompt", 0.8},
	{regexp.MustCompile(`(?i)(list|show|give|tell)\s+(me\s+)?(all\s+)?(the\s+)?(other\s+)?(customers?|buyers?|leads?)('?s)?\s+(names?|emails?|phones?|numbers?|details?)`), "exfiltration:customer_data", 0.8},
	{regexp.MustCompile(`(?i)\b(api|secret|aws|database|db|admin)\s*(key|token|secret|password|credential)s?\b`), "exfiltration:credentials", 0.8},
	{regexp.MustCompile(`(?i)\[/?INST\]|\[/?SYS\]|<\|im_start\|>|<\|im_end\|>|<\|system\|>`), "context:special_tokens", 0.9},
	{regexp.MustCompile(`(?i)###\s*(system|instruction|assistant)\s*:`), "context:role_markers", 0.7},
	{regexp.MustCompile(`<\s*(script|iframe|object|embed|svg)\b`), "obfuscation:html", 0.6},
	{regexp.MustCompile(`(?i)base64\s*(encode|decode|:)`), "obfuscation:encoding", 0.4},
}

var (
	specialTokens = regexp.MustCompile(`(?i)\[/?INST\]|\[/?SYS\]|<\|im_start\|>|<\|im_end\|>|<\|system\|>|<\|user\|>|<\|assistant\|>`)
	roleMarkers   = regexp.MustCompile(`(?i)###\s*(system|instruction|human|assistant|user)\s*:`)
	htmlTags      = regexp.MustCompile(`<\s*(script|img|iframe|object|embed|link|style|svg|form)\b[^>]*>`)
)

// ScanMessage scores a visitor message for prompt injection. The score is the
// strongest signal plus 0.1 for every further signal, capped at 1.
func ScanMessage(message string) ScanResult {
	result := ScanResult{Sanitized: message}
	if strings.TrimSpace(message) == "" {
		return result
	}
	for _, p := range inputPatterns {
		if !p.re.MatchString(message) {
			continue
		}
		result.Reasons = append(result.Reasons, p.reason)
		if p.weight > result.Score {
			result.Score = p.weight
		}
	}
	if n := len(result.Reasons); n > 1 {
		result.Score = min(result.Score+float64(n-1)*0.1, 1)
	}
	result.Blocked = result.Score >= blockScore
	if !result.Blocked && result.Score >= sanitizeScore {
		result.Sanitized = sanitizeMessage(message)
	}
	return result
}

func sanitizeMessage(message string) string {
	cleaned := specialTokens.ReplaceAllString(message, "")
	cleaned = roleMarkers.ReplaceAllString(cleaned, "")
	cleaned = htmlTags.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// ReplyScan is the verdict on one model reply.
type ReplyScan struct {
	Leaked  bool
	Reasons []string
	// Sanitized is empty when the reply cannot be salvaged.
	Sanitized string
}

type leakPattern struct {
	re     *regexp.Regexp
	reason string
	block  bool
}

var replyPatterns = []leakPattern{
	{regexp.MustCompile(`(?i)my (system\s+)?(prompt|instructions?)\s+(is|are|says?|tells?)`), "leak:instructions", true},
	{regexp.MustCompile(`(?i)i('m| am) (programmed|instructed|configured) to`), "leak:programming", true},
	{regexp.MustCompile(`(?i)(powered by|built on|running on)\s+(Claude|GPT|OpenAI|Anthropic|Bedrock|Gemini|AWS)`), "leak:tech_stack", true},
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret[_\s]?key|access[_\s]?token)\s*[:=]\s*\S+`), "leak:credential", true},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "leak:aws_key", true},
	{regexp.MustCompile(`(?i)(postgres|redis|sqlite|kafka)://\S+`), "leak:connection_string", true},
	{regexp.MustCompile(`(?i)/admin/|/metrics\b`), "leak:internal_path", true},
	{regexp.MustCompile(`(?i)i('m| am) (a|an) (AI|artificial intelligence|language model|chatbot)\b`), "leak:ai_identity", false},
}

var aiIdentitySentence = regexp.MustCompile(`(?i)[^.!?]*\bi('m| am) (a|an) (AI|artificial intelligence|language model|chatbot)\b[^.!?]*[.!?]?\s*`)

// ScanReply checks a model reply before it reaches the visitor.
func ScanReply(reply string) ReplyScan {
	scan := ReplyScan{Sanitized: reply}
	block := false
	for _, p := range replyPatterns {
		if p.re.MatchString(reply) {
			scan.Reasons = append(scan.Reasons, p.reason)
			block = block || p.block
		}
	}
	if len(scan.Reasons) == 0 {
		return scan
	}
	scan.Leaked = true
	if block {
		scan.Sanitized = ""
	} else {
		scan.Sanitized = strings.TrimSpace(aiIdentitySentence.ReplaceAllString(reply, ""))
	}
	return scan
}
