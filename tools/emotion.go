package tools

/************************************************
/**** MARK: EMOTION TAGS ****/
/************************************************/
const EMOTION_HAPPY = "happy"
const EMOTION_ANGRY = "angry"
const EMOTION_SAD = "sad"
const EMOTION_FEAR = "fear"
const EMOTION_NEUTRAL = "neutral"

// EmotionForSentiment maps a raw sentiment label onto the small fixed
// vocabulary used for display. Total and pure: any label it does not know
// (including "neutral" and "") maps to neutral. Both "anger" and "angry" are
// accepted and unified as angry.
func EmotionForSentiment(sentiment string) string {
	switch sentiment {
	case "positive":
		return EMOTION_HAPPY
	case "anger", "angry":
		return EMOTION_ANGRY
	case "sad":
		return EMOTION_SAD
	case "fear":
		return EMOTION_FEAR
	default:
		return EMOTION_NEUTRAL
	}
}
