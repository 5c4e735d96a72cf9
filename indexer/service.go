package indexer

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(ListenAddr string, indexer *ChainIndexer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: ListenAddr,
	}
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getDeposits", s.handleGetDeposits)
	s.engine.POST("/getMembers", s.handleGetMembers)
	s.engine.POST("/getGov", s.handleGetGov)
	return s
}

func (s *Service) Start() {
	s.engine.Run(s.listenAddr)
}

type ProposalInfo struct {
	Proposal Proposal `json:"proposal"`
	VoteCnt  uint64   `json:"voteCnt"`
	Votes    []Vote   `json:"votes"`
}

type GetProposalsReq struct {
	ProposalId       uint64 `json:"proposalId"`
	SubmitterAddress string `json:"submitter"`
	Phase            string `json:"phase"`
	Page             int    `json:"page"`
	PageSize         int    `json:"pageSize"`
}

type GetProposalResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalResponse
	response.Proposals = make([]ProposalInfo, 0)
	var err error
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalId != 0 {
		proposalInfo, err := s.getProposalInfoById(requestData.ProposalId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}

	proposalTotal := uint64(0)
	proposals := make([]Proposal, 0)
	switch {
	case requestData.SubmitterAddress != "":
		proposals, proposalTotal, err = s.indexer.getProposalsBySubmitterAddr(requestData.SubmitterAddress, requestData.Page, requestData.PageSize)
	case requestData.Phase != "":
		proposals, proposalTotal, err = s.indexer.getProposalsByPhase(requestData.Phase, requestData.Page, requestData.PageSize)
	default:
		proposals, proposalTotal, err = s.indexer.getProposals(requestData.Page, requestData.PageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response.Total = proposalTotal
	for _, proposal := range proposals {
		proposalInfo, err := s.getProposalInfoById(proposal.Id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) getProposalInfoById(proposalId uint64) (ProposalInfo, error) {
	proposal, err := s.indexer.getProposalById(proposalId)
	if err != nil {
		return ProposalInfo{}, err
	}
	votes, total, err := s.indexer.getVotesByProposal(proposalId, 0, 1000)
	if err != nil {
		return ProposalInfo{}, err
	}
	proposalInfo := ProposalInfo{
		Proposal: proposal,
		VoteCnt:  total,
		Votes:    votes,
	}
	return proposalInfo, nil
}

type GetVotesReq struct {
	ProposalId   uint64 `json:"proposalId"`
	VoterAddress string `json:"voter"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []Vote `json:"votes"`
	Total uint64 `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]Vote, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var err error
	if requestData.ProposalId != 0 {
		response.Votes, response.Total, err = s.indexer.getVotesByProposal(requestData.ProposalId, requestData.Page, requestData.PageSize)
	} else if requestData.VoterAddress != "" {
		response.Votes, response.Total, err = s.indexer.getVotesByVoter(requestData.VoterAddress, requestData.Page, requestData.PageSize)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId or voter is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetDepositsReq struct {
	Address  string `json:"address"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetDepositsResponse struct {
	Deposits []Deposit `json:"deposits"`
	Total    uint64    `json:"total"`
}

func (s *Service) handleGetDeposits(c *gin.Context) {
	var response GetDepositsResponse
	response.Deposits = make([]Deposit, 0)
	var requestData GetDepositsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	var err error
	response.Deposits, response.Total, err = s.indexer.getDepositsByAddress(requestData.Address, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

type GetMembersResponse struct {
	Members []Member `json:"members"`
}

func (s *Service) handleGetMembers(c *gin.Context) {
	members, err := s.indexer.getMembers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetMembersResponse{Members: members})
}

func (s *Service) handleGetGov(c *gin.Context) {
	res, err := s.indexer.cli.ABCIQuery(context.Background(), "/gov/", nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.Response.Code != 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Response.Log})
		return
	}
	var info map[string]any
	if err := json.Unmarshal(res.Response.Value, &info); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gov": info, "height": res.Response.Height})
}
