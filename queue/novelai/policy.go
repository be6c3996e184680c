package novelai

import "regexp"

// nsfwTerms matches prompts that should stay in age-restricted channels.
var nsfwTerms = regexp.MustCompile(`(?i)\b(nsfw|explicit|questionable|nude|nudity|naked|topless|bottomless|nipples?|areolae?|breasts? out|pussy|vagina|penis|cock|dick|testicles|anus|sex|sexual|cum|cumdrip|ejaculation|orgasm|masturbation|fellatio|paizuri|cunnilingus|rape|bondage|bdsm|hentai|porn|lewd|erection|futanari|panties|underwear|lingerie)\b`)

// tosTerms matches prompts that must never be combined with nsfw content or generated in private.
var tosTerms = regexp.MustCompile(`(?i)\b(loli|lolis|lolicon|shota|shotas|shotacon|child|children|kids?|toddlers?|underage|preteens?|infants?|babies|baby|young girl|young boy|little girl|little boy|elementary school)\b`)

const (
	nsfwChannelContent  = ":warning: You may not generate NSFW images in non-NSFW channels."
	privateTermsContent = ":warning: To abide by Discord terms of service, the prompt you chose may not be used in private.\n" +
		"You may use this command in a server, where your generations may be reviewed by a moderator."
	termsContent = ":warning: To abide by Discord terms of service, the prompt you chose may not be used."

	// safeQualifier is prepended in non-nsfw channels of servers that enabled the filter.
	safeQualifier = "rating:general, "
)

// checkContent applies the content rules in order and returns the prompt to send upstream.
func checkContent(prompt string, where Where, filtered bool) (string, *Rejection) {
	nsfw := nsfwTerms.MatchString(prompt)
	tos := tosTerms.MatchString(prompt)

	if !where.IsDM() && !where.NSFW && nsfw {
		return "", &Rejection{Reason: RejectNSFWChannel, Message: nsfwChannelContent}
	}
	if where.IsDM() && tos {
		return "", &Rejection{Reason: RejectPrivateTerms, Message: privateTermsContent}
	}
	if nsfw && tos {
		return "", &Rejection{Reason: RejectTerms, Message: termsContent}
	}
	if !where.IsDM() && !where.NSFW && filtered {
		return safeQualifier + prompt, nil
	}
	return prompt, nil
}
