package vlm

// LanguageClassificationPrompt captures the instructions sent with every
// sampled page image. Keep updates centralized here so it is easy to tweak
// without hunting through call sites.
const LanguageClassificationPrompt = `You are an assistant that identifies the dominant written language of a scanned document page.

Rules:

- Judge only the body text. Ignore page numbers, URLs, author names, citations, and mathematical notation.

- If the page mixes languages, report the one covering the largest share of the body text.

- Report the language as a lowercase ISO 639-1 code ("en", "zh", "de", "ja").

You must respond ONLY with a JSON object like: {"language": "en", "confidence": 0.95}`
