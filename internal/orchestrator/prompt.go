package orchestrator

import (
	"fmt"
	"strings"

	"github.com/local/slidegen/internal/slides"
)

const systemPromptEN = "You are an expert presentation writer. You write concise, factual slide content and always follow the requested output format exactly."

const systemPromptAR = "أنت كاتب عروض تقديمية محترف. تكتب محتوى شرائح موجزًا ودقيقًا وتلتزم دائمًا بتنسيق الإخراج المطلوب حرفيًا."

func systemPrompt(lang slides.Language) string {
	if lang == slides.Arabic {
		return systemPromptAR
	}
	return systemPromptEN
}

// generatePrompt builds the user instruction for a full deck.
func generatePrompt(req GenerateRequest, lang slides.Language) string {
	var b strings.Builder
	if lang == slides.Arabic {
		fmt.Fprintf(&b, "أنشئ عرضًا تقديميًا من %d شرائح عن الموضوع: %s\n", req.SlideCount, req.Topic)
		if req.Theme != "" {
			fmt.Fprintf(&b, "نمط العرض: %s\n", req.Theme)
		}
		b.WriteString("\nالقواعد:\n")
		b.WriteString("- الشريحة الأولى شريحة افتتاحية تحتوي على عنوان فقط دون نقاط.\n")
		if req.SlideCount > 1 {
			b.WriteString("- الشريحة الأخيرة خاتمة تحتوي على ٣ نقاط كحد أقصى.\n")
			b.WriteString("- كل شريحة أخرى تحتوي على ٣ إلى ٥ نقاط.\n")
		}
		b.WriteString("- لا تكرر العناوين أو المحتوى بين الشرائح.\n")
		b.WriteString("- اكتب المحتوى باللغة العربية.\n")
		b.WriteString("\nاستخدم هذا التنسيق بالضبط لكل شريحة:\n")
		b.WriteString("Slide 1:\nTitle: <العنوان>\nBullets:\n- <نقطة>\n- <نقطة>\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Create a presentation of exactly %d slides about: %s\n", req.SlideCount, req.Topic)
	if req.Theme != "" {
		fmt.Fprintf(&b, "Presentation style: %s\n", req.Theme)
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Slide 1 is an introduction slide with a title only and no bullets.\n")
	if req.SlideCount > 1 {
		b.WriteString("- The last slide is a conclusion with at most 3 bullets.\n")
		b.WriteString("- Every other slide has between 3 and 5 bullets.\n")
	}
	b.WriteString("- Do not repeat titles or content across slides.\n")
	b.WriteString("\nUse exactly this format for every slide:\n")
	b.WriteString("Slide 1:\nTitle: <title>\nBullets:\n- <bullet>\n- <bullet>\n")
	return b.String()
}

// regeneratePrompt builds the user instruction for rewriting one slide.
func regeneratePrompt(req RegenerateRequest, lang slides.Language, titleOnly bool) string {
	var b strings.Builder
	arabic := lang == slides.Arabic
	if arabic {
		fmt.Fprintf(&b, "أعد كتابة شريحة واحدة من عرض تقديمي عن: %s\n\n", req.Topic)
		fmt.Fprintf(&b, "العنوان الأصلي: %s\n", req.Original.Title)
	} else {
		fmt.Fprintf(&b, "Rewrite one slide of a presentation about: %s\n\n", req.Topic)
		fmt.Fprintf(&b, "Original title: %s\n", req.Original.Title)
	}
	if len(req.Original.Bullets) > 0 {
		if arabic {
			b.WriteString("النقاط الأصلية:\n")
		} else {
			b.WriteString("Original bullets:\n")
		}
		for _, bl := range req.Original.Bullets {
			fmt.Fprintf(&b, "- %s\n", bl)
		}
	}
	if fb := strings.TrimSpace(req.Feedback); fb != "" {
		if arabic {
			fmt.Fprintf(&b, "\nملاحظات المستخدم: %s\n", fb)
		} else {
			fmt.Fprintf(&b, "\nUser feedback: %s\n", fb)
		}
	}
	if req.Theme != "" {
		if arabic {
			fmt.Fprintf(&b, "نمط العرض: %s\n", req.Theme)
		} else {
			fmt.Fprintf(&b, "Presentation style: %s\n", req.Theme)
		}
	}

	switch {
	case arabic && titleOnly:
		b.WriteString("\nهذه شريحة عنوان فقط: اكتب عنوانًا جديدًا دون أي نقاط.\n")
	case arabic:
		b.WriteString("\nاكتب من ٣ إلى ٥ نقاط باللغة العربية.\n")
	case titleOnly:
		b.WriteString("\nThis is a title-only slide: write a new title and no bullets.\n")
	default:
		b.WriteString("\nWrite between 3 and 5 bullets.\n")
	}
	if arabic {
		b.WriteString("\nاستخدم هذا التنسيق بالضبط:\n")
	} else {
		b.WriteString("\nUse exactly this format:\n")
	}
	b.WriteString("Slide 1:\nTitle: <title>\n")
	if !titleOnly {
		b.WriteString("Bullets:\n- <bullet>\n")
	}
	return b.String()
}
