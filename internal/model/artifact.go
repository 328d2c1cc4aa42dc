package model

// 本文件中的类型不入库，是生成管线的产物与中间结果。
// Quiz与ModuleArtifact整体序列化后写入产物存储，由记录表持有其不透明ID。

// GoalVerdict 目标质量评估结论。仅IsSmart决定目标是否入库，
// 理由与建议原样返回给调用方（拒绝时也不丢弃）
type GoalVerdict struct {
	IsSmart     bool   `json:"isSmart"`
	Rationale   string `json:"rationale"`
	Suggestions string `json:"suggestions"`
}

// DifficultyTier 题目难度档位
type DifficultyTier string

const (
	TierBasic        DifficultyTier = "Basic"
	TierIntermediate DifficultyTier = "Intermediate"
	TierAdvanced     DifficultyTier = "Advanced"
)

// Question 诊断测验中的一道题
type Question struct {
	TypeLabel         string         `json:"questionType"`
	SkillTested       string         `json:"skillTested"`
	DifficultyTier    DifficultyTier `json:"difficultyTier"`
	Prompt            string         `json:"question"`
	Options           []string       `json:"options"`
	CorrectAnswer     string         `json:"rightAnswer"`
	DiagnosticInsight string         `json:"diagnosticInsight"`
}

// Quiz 一次生成的完整测验，题目数固定
type Quiz struct {
	Questions []Question `json:"questions"`
}

// Roadmap 学习路线图。四个字段始终存在，可为空列表但不可缺失
type Roadmap struct {
	Topics          []string `json:"topics"`
	Prerequisites   []string `json:"prerequisites"`
	WeeklyBreakdown []string `json:"weeklyBreakdown"`
	KeyMilestones   []string `json:"keyMilestones"`
}

// PracticePlan 与路线图配套的练习方案
type PracticePlan struct {
	ActiveRecall          []string `json:"activeRecall"`
	HandsOnProjects       []string `json:"handsOnProjects"`
	DebuggingScenarios    []string `json:"debuggingScenarios"`
	CollaborativeLearning []string `json:"collaborativeLearning"`
}

// ModuleArtifact 学习模块的存储单元，修订时整体替换
type ModuleArtifact struct {
	Roadmap  Roadmap      `json:"roadmap"`
	Practice PracticePlan `json:"practice"`
}

// Evaluation 修订前的评估结果。即算即用，不落库
type Evaluation struct {
	Reward      int    `json:"reward"`
	Suggestions string `json:"suggestions"`
}
