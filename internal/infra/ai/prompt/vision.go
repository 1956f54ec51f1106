package prompt

// VisionExtract is the instruction sent with an image for text extraction.
const VisionExtract = "Extract all visible text from this medical report image. Focus on medical data, test results, measurements, and any diagnostic information. Return only the extracted text content."
