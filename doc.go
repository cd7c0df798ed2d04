// Package gatherkit 是社区/活动平台的混合推荐引擎（Gather Kit）。
//
// 设计要点：
// - 三路混合：协同过滤 / 内容匹配 / 热度，独立打分后线性聚合
// - Pipeline-first: 推荐逻辑通过 Node 串联（Score → ReRank → Filter → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 无状态：所有输入是调用方传入的只读快照，同一输入产出同一输出
package gatherkit

import "github.com/gatherkit/gatherkit/pipeline"

// 轻量 facade：便于用户直接 import "gatherkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindSource      = pipeline.KindSource
	KindScore       = pipeline.KindScore
	KindReRank      = pipeline.KindReRank
	KindFilter      = pipeline.KindFilter
	KindPostProcess = pipeline.KindPostProcess
)
