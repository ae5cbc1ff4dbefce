// Truth-or-dare prompts for challenge mode. Mature but not explicit,
// and gender neutral.

package main

import "math/rand"

type ChallengeKind string

const (
	ChallengeTruth ChallengeKind = "truth"
	ChallengeDare  ChallengeKind = "dare"
)

// Challenge is a single truth-or-dare prompt assigned to the loser of a
// challenge mode game.
type Challenge struct {
	Kind ChallengeKind
	Text string
}

var truthQuestions = []string{
	"What's the most embarrassing thing you've done in front of others?",
	"Have you ever lied to someone close to you? What about?",
	"What's something you'd never want your family to know about you?",
	"Have you ever texted someone and regretted it immediately?",
	"What's a skill you wish you were better at?",
	"What's the worst advice you've ever given someone?",
	"Have you ever stalked someone on social media?",
	"What's a weird habit you have that nobody knows about?",
	"When was the last time you genuinely cried?",
	"Have you ever acted like you understood something when you didn't?",
	"What's a purchase you regret spending money on?",
	"Have you ever ghosted someone? Why?",
	"What's the pettiest thing you've ever been upset about?",
	"Have you ever judged someone by their appearance?",
	"What's the most controversial opinion you secretly hold?",
	"Have you ever taken credit for someone else's work?",
	"What's something you do differently when people are watching?",
	"Have you ever broken a promise to someone important?",
	"What's the most childish thing you still enjoy doing?",
	"Have you ever been genuinely afraid of someone you know?",
}

var dareChallenges = []string{
	"Send a funny selfie to the group chat (if available)",
	"Do an impression of your opponent for 30 seconds",
	"Describe your opponent in 3 compliments without laughing",
	"Speak in a funny accent for the next 2 minutes",
	"Do 10 push-ups or jumping jacks right now",
	"Call someone and sing them 'Happy Birthday' (fake birthday if needed)",
	"Walk around the room like a penguin for 30 seconds",
	"Do your best dance move",
	"Recite the alphabet backwards as fast as you can",
	"Try to make your opponent smile/laugh without talking",
	"Post a funny caption about this game on your social media",
	"Eat a spoonful of something unusual from your kitchen",
	"Do a funny TikTok dance (if you know one)",
	"Compliment your opponent's outfit in an exaggerated way",
	"Switch clothes with your opponent for one game",
	"Tell a terrible joke and pretend it's hilarious",
	"Imitate your opponent's way of speaking for 5 minutes",
	"Do a silly version of a exercise (exaggerated stretching, etc)",
	"Write a poem about losing to your opponent",
	"Challenge your opponent to arm wrestle (loser does another dare)",
}

// pickChallenge flips a coin between a truth and a dare, then picks a
// prompt from the matching pool.
func pickChallenge(rng *rand.Rand) Challenge {
	if rng.Intn(2) == 0 {
		return Challenge{
			Kind: ChallengeTruth,
			Text: truthQuestions[rng.Intn(len(truthQuestions))],
		}
	}
	return Challenge{
		Kind: ChallengeDare,
		Text: dareChallenges[rng.Intn(len(dareChallenges))],
	}
}
