// Package meta holds the static meeting vocabulary: the four enumerations a
// chair can pin on a room (goal, participation format, decision rule,
// deliverable) together with their display metadata. The catalog is versioned
// and served as-is over HTTP; no business logic depends on which value is
// selected.
package meta

// CatalogVersion tags the metadata payloads so front-ends can cache them.
const CatalogVersion = "1.0"

// MeetingGoal classifies what a meeting is trying to achieve.
type MeetingGoal string

const (
	GoalShareInformation     MeetingGoal = "SHARE_INFORMATION"
	GoalAdvanceThinking      MeetingGoal = "ADVANCE_THINKING"
	GoalObtainInput          MeetingGoal = "OBTAIN_INPUT"
	GoalMakeDecisions        MeetingGoal = "MAKE_DECISIONS"
	GoalImproveCommunication MeetingGoal = "IMPROVE_COMMUNICATION"
	GoalBuildCapacity        MeetingGoal = "BUILD_CAPACITY"
	GoalBuildCommunity       MeetingGoal = "BUILD_COMMUNITY"
)

// ParticipationFormat names the facilitation structure in use.
type ParticipationFormat string

const (
	FormatStructuredGoArounds     ParticipationFormat = "STRUCTURED_GO_AROUNDS"
	FormatPresentationsAndReports ParticipationFormat = "PRESENTATIONS_AND_REPORTS"
	FormatSmallGroups             ParticipationFormat = "SMALL_GROUPS"
	FormatListingIdeas            ParticipationFormat = "LISTING_IDEAS"
	FormatJigsaw                  ParticipationFormat = "JIGSAW"
	FormatIndividualWriting       ParticipationFormat = "INDIVIDUAL_WRITING"
	FormatMultiTasking            ParticipationFormat = "MULTI_TASKING"
	FormatOpenDiscussion          ParticipationFormat = "OPEN_DISCUSSION"
	FormatFishbowls               ParticipationFormat = "FISHBOWLS"
	FormatTradeshow               ParticipationFormat = "TRADESHOW"
	FormatScrambler               ParticipationFormat = "SCRAMBLER"
	FormatRoleplays               ParticipationFormat = "ROLEPLAYS"
)

// DecisionRule names how the group converts discussion into a decision.
type DecisionRule string

const (
	RuleUnanimity            DecisionRule = "UNANIMITY"
	RuleGradientsOfAgreement DecisionRule = "GRADIENTS_OF_AGREEMENT"
	RuleDotVoting            DecisionRule = "DOT_VOTING"
	RuleSupermajority        DecisionRule = "SUPERMAJORITY"
	RuleMajority             DecisionRule = "MAJORITY"
	RulePlurality            DecisionRule = "PLURALITY"
	RuleConsent              DecisionRule = "CONSENT"
	RulePersonInCharge       DecisionRule = "PERSON_IN_CHARGE"
	RuleCommission           DecisionRule = "COMMISSION"
	RuleFlipACoin            DecisionRule = "FLIP_A_COIN"
)

// Deliverable names the artifact the meeting should produce.
type Deliverable string

const (
	DeliverableDefineProblem           Deliverable = "DEFINE_PROBLEM"
	DeliverableCreateMilestoneMap      Deliverable = "CREATE_MILESTONE_MAP"
	DeliverableAnalyzeProblem          Deliverable = "ANALYZE_PROBLEM"
	DeliverableCreateWorkBreakdown     Deliverable = "CREATE_WORK_BREAKDOWN"
	DeliverableIdentifyRootCauses      Deliverable = "IDENTIFY_ROOT_CAUSES"
	DeliverableConductResourceAnalysis Deliverable = "CONDUCT_RESOURCE_ANALYSIS"
	DeliverableIdentifyPatterns        Deliverable = "IDENTIFY_PATTERNS"
	DeliverableConductRiskAssessment   Deliverable = "CONDUCT_RISK_ASSESSMENT"
	DeliverableSortIdeasIntoThemes     Deliverable = "SORT_IDEAS_INTO_THEMES"
	DeliverableDefineSelectionCriteria Deliverable = "DEFINE_SELECTION_CRITERIA"
	DeliverableRearrangeByPriority     Deliverable = "REARRANGE_BY_PRIORITY"
	DeliverableEvaluateOptions         Deliverable = "EVALUATE_OPTIONS"
	DeliverableDrawFlowchart           Deliverable = "DRAW_FLOWCHART"
	DeliverableIdentifySuccessFactors  Deliverable = "IDENTIFY_SUCCESS_FACTORS"
	DeliverableIdentifyCoreValues      Deliverable = "IDENTIFY_CORE_VALUES"
	DeliverableEditStatement           Deliverable = "EDIT_STATEMENT"
)

// Entry is one catalog row as exposed over HTTP.
type Entry struct {
	Value       string `json:"value"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// MeetingGoals lists every meeting goal in declaration order.
var MeetingGoals = []Entry{
	{string(GoalShareInformation), "Share Information", "Ensure everyone has the same facts, updates, or context."},
	{string(GoalAdvanceThinking), "Advance the Thinking", "Develop ideas further through discussion, analysis, and reflection."},
	{string(GoalObtainInput), "Obtain Input", "Gather perspectives, feedback, or expertise from participants."},
	{string(GoalMakeDecisions), "Make Decisions", "Reach agreement or choose a course of action collaboratively."},
	{string(GoalImproveCommunication), "Improve Communication", "Strengthen clarity, understanding, and mutual trust among participants."},
	{string(GoalBuildCapacity), "Build Capacity", "Develop participants' skills, knowledge, or confidence to act effectively."},
	{string(GoalBuildCommunity), "Build Community", "Foster relationships, connection, and shared purpose within the group."},
}

// ParticipationFormats lists every participation format in declaration order.
var ParticipationFormats = []Entry{
	{string(FormatStructuredGoArounds), "Structured Go-Arounds", "Everyone contributes in turn, ensuring equal participation and balanced input."},
	{string(FormatPresentationsAndReports), "Presentations and Reports", "Individuals or teams share prepared findings or updates with the group."},
	{string(FormatSmallGroups), "Small Groups", "Participants work in subgroups to explore topics or solve problems collaboratively."},
	{string(FormatListingIdeas), "Listing Ideas", "The group rapidly generates and records ideas without immediate evaluation."},
	{string(FormatJigsaw), "Jigsaw", "Each subgroup learns part of a topic and teaches it to others, combining knowledge collaboratively."},
	{string(FormatIndividualWriting), "Individual Writing", "Participants reflect or respond in writing before sharing or discussing."},
	{string(FormatMultiTasking), "Multi-Tasking", "Participants engage in parallel activities contributing to a shared goal or outcome."},
	{string(FormatOpenDiscussion), "Open Discussion", "Participants freely exchange views and reactions in an unstructured conversation."},
	{string(FormatFishbowls), "Fishbowls", "A small inner group discusses while others observe, then roles switch for reflection and feedback."},
	{string(FormatTradeshow), "Tradeshow", "Participants display and explain their work or ideas at stations others visit in rotation."},
	{string(FormatScrambler), "Scrambler", "Participants move between tasks, stations, or partners to stimulate diverse perspectives."},
	{string(FormatRoleplays), "Roleplays", "Participants act out scenarios to explore perspectives, behaviors, or problem-solving strategies."},
}

// DecisionRules lists every decision rule in declaration order.
var DecisionRules = []Entry{
	{string(RuleUnanimity), "Unanimity", "All participants must fully agree before a decision is made."},
	{string(RuleGradientsOfAgreement), "Gradients of Agreement", "Participants express varying levels of support, revealing nuanced consensus rather than a simple yes/no."},
	{string(RuleDotVoting), "Dot Voting", "Each person allocates a limited number of votes (dots) to indicate preferences or priorities visually."},
	{string(RuleSupermajority), "Supermajority", "A decision requires a higher-than-simple majority, such as two-thirds or three-quarters agreement."},
	{string(RuleMajority), "Majority", "The option with more than half of the votes wins."},
	{string(RulePlurality), "Plurality", "The option with the most votes wins, even if it lacks a majority."},
	{string(RuleConsent), "Consent", "A proposal moves forward unless there is a reasoned and paramount objection."},
	{string(RulePersonInCharge), "Person in Charge", "A designated leader makes the final decision after input from others."},
	{string(RuleCommission), "Commission", "A smaller group or committee is empowered to deliberate and decide on behalf of the whole."},
	{string(RuleFlipACoin), "Flip a Coin", "A neutral random choice is used to decide between equally acceptable or deadlocked options."},
}

// Deliverables lists every deliverable in declaration order.
var Deliverables = []Entry{
	{string(DeliverableDefineProblem), "Define a problem", "Clearly articulate the issue or challenge that needs to be addressed"},
	{string(DeliverableCreateMilestoneMap), "Create a milestone map", "Identify key checkpoints and timeline for project phases"},
	{string(DeliverableAnalyzeProblem), "Analyze a problem", "Examine causes, effects, and context of the issue in depth"},
	{string(DeliverableCreateWorkBreakdown), "Create a work breakdown structure", "Break down the project into manageable tasks and subtasks"},
	{string(DeliverableIdentifyRootCauses), "Identify root causes", "Determine the fundamental reasons behind the problem"},
	{string(DeliverableConductResourceAnalysis), "Conduct a resource analysis", "Assess available resources including time, budget, and personnel"},
	{string(DeliverableIdentifyPatterns), "Identify underlying patterns", "Recognize recurring themes or trends in the data or situation"},
	{string(DeliverableConductRiskAssessment), "Conduct a risk assessment", "Evaluate potential risks and their impact on the project"},
	{string(DeliverableSortIdeasIntoThemes), "Sort a list of ideas into themes", "Organize and categorize ideas into coherent groups"},
	{string(DeliverableDefineSelectionCriteria), "Define selection criteria", "Establish the standards for evaluating and choosing options"},
	{string(DeliverableRearrangeByPriority), "Rearrange a list of items by priority", "Order items based on importance, urgency, or value"},
	{string(DeliverableEvaluateOptions), "Evaluate options", "Assess and compare different alternatives against criteria"},
	{string(DeliverableDrawFlowchart), "Draw a flowchart", "Create a visual diagram showing process steps and decision points"},
	{string(DeliverableIdentifySuccessFactors), "Identify critical success factors", "Determine the key elements necessary for success"},
	{string(DeliverableIdentifyCoreValues), "Identify core values", "Define the fundamental principles guiding decisions and actions"},
	{string(DeliverableEditStatement), "Edit and/or wordsmith a statement", "Refine and improve the clarity and impact of written text"},
}

func contains(entries []Entry, value string) bool {
	for _, e := range entries {
		if e.Value == value {
			return true
		}
	}
	return false
}

// ParseMeetingGoal maps a raw string onto a known MeetingGoal.
// ok is false for anything outside the catalog.
func ParseMeetingGoal(s string) (MeetingGoal, bool) {
	if contains(MeetingGoals, s) {
		return MeetingGoal(s), true
	}
	return "", false
}

// ParseParticipationFormat maps a raw string onto a known ParticipationFormat.
func ParseParticipationFormat(s string) (ParticipationFormat, bool) {
	if contains(ParticipationFormats, s) {
		return ParticipationFormat(s), true
	}
	return "", false
}

// ParseDecisionRule maps a raw string onto a known DecisionRule.
func ParseDecisionRule(s string) (DecisionRule, bool) {
	if contains(DecisionRules, s) {
		return DecisionRule(s), true
	}
	return "", false
}

// ParseDeliverable maps a raw string onto a known Deliverable.
func ParseDeliverable(s string) (Deliverable, bool) {
	if contains(Deliverables, s) {
		return Deliverable(s), true
	}
	return "", false
}
